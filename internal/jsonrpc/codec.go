package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
)

// DefaultMaxFrameSize bounds how many bytes a single frame may occupy before
// the decoder gives up on it and skips to the next terminator.
const DefaultMaxFrameSize = 4 << 20

const frameTerminator = '\n'

var (
	// ErrMalformedFrame indicates a terminated frame that is not a single JSON value.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrFrameTooLarge indicates a frame exceeded the decoder's size limit.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrUnterminatedFrame indicates the stream ended inside a frame.
	ErrUnterminatedFrame = errors.New("unterminated frame")
)

// FrameError reports a frame that could not be decoded. Raw holds the
// offending bytes (truncated for oversized frames).
type FrameError struct {
	Raw []byte
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("jsonrpc: %v (%d bytes)", e.Err, len(e.Raw))
}

func (e *FrameError) Unwrap() error { return e.Err }

// Decoder splits a byte stream into newline-delimited JSON frames. It keeps
// any partial frame between calls to Feed so chunks may be cut anywhere.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	buf        []byte
	maxFrame   int
	discarding bool // inside an oversized frame, waiting for its terminator
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxFrameSize overrides DefaultMaxFrameSize. Non-positive values are ignored.
func WithMaxFrameSize(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxFrame = n
		}
	}
}

// NewDecoder constructs a Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{maxFrame: DefaultMaxFrameSize}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends chunk to the pending input and returns the complete frames it
// produced. Each element is either a Message or a *FrameError; a FrameError
// never stops the sequence, the decoder has already resynchronized on the
// next terminator. Blank lines are skipped.
//
// The sequence must be consumed before Feed is called again. Stopping early
// leaves the unconsumed frames buffered for the next call.
func (d *Decoder) Feed(chunk []byte) iter.Seq2[Message, error] {
	d.buf = append(d.buf, chunk...)
	return func(yield func(Message, error) bool) {
		for {
			i := bytes.IndexByte(d.buf, frameTerminator)
			if i < 0 {
				if !d.discarding && len(d.buf) > d.maxFrame {
					raw := bytes.Clone(d.buf[:d.maxFrame])
					d.buf = d.buf[:0]
					d.discarding = true
					if !yield(nil, &FrameError{Raw: raw, Err: ErrFrameTooLarge}) {
						return
					}
				} else if d.discarding {
					d.buf = d.buf[:0]
				}
				return
			}

			line := d.buf[:i]
			rest := d.buf[i+1:]
			if d.discarding {
				d.discarding = false
				d.buf = rest
				continue
			}

			msg, err := d.frame(line)
			d.buf = rest
			if msg == nil && err == nil {
				continue
			}
			if !yield(msg, err) {
				return
			}
		}
	}
}

// Close reports whether the stream ended inside a frame. It returns a
// *FrameError carrying the partial bytes, or nil when nothing is pending.
func (d *Decoder) Close() error {
	pending := bytes.TrimSpace(d.buf)
	discarding := d.discarding
	d.buf = nil
	d.discarding = false
	if len(pending) == 0 || discarding {
		return nil
	}
	return &FrameError{Raw: bytes.Clone(pending), Err: ErrUnterminatedFrame}
}

// Buffered returns the number of bytes held for an incomplete frame.
func (d *Decoder) Buffered() int { return len(d.buf) }

func (d *Decoder) frame(line []byte) (Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	if len(line) > d.maxFrame {
		return nil, &FrameError{Raw: bytes.Clone(line[:d.maxFrame]), Err: ErrFrameTooLarge}
	}
	if !json.Valid(line) {
		return nil, &FrameError{Raw: bytes.Clone(line), Err: ErrMalformedFrame}
	}
	return Message(bytes.Clone(line)), nil
}

// Encode serializes v as a single terminated frame. encoding/json never emits
// a raw newline, so the terminator is unambiguous.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: encode: %w", err)
	}
	return append(b, frameTerminator), nil
}

// Encoder writes frames to an io.Writer, one Write call per frame.
type Encoder struct {
	w io.Writer
}

// NewEncoder constructs an Encoder.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes v as one frame.
func (e *Encoder) Encode(v any) error {
	b, err := Encode(v)
	if err != nil {
		return err
	}
	return e.WriteFrame(b[:len(b)-1])
}

// WriteFrame writes an already-encoded message followed by the terminator.
func (e *Encoder) WriteFrame(msg Message) error {
	frame := make([]byte, 0, len(msg)+1)
	frame = append(frame, msg...)
	frame = append(frame, frameTerminator)
	if _, err := e.w.Write(frame); err != nil {
		return fmt.Errorf("jsonrpc: write frame: %w", err)
	}
	return nil
}
