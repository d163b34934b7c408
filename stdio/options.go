package stdio

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Option customizes a Handler.
type Option func(*Handler)

// WithIO sets the reader and writer for the handler.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(h *Handler) {
		if r != nil {
			h.r = r
		}
		if w != nil {
			h.w = w
		}
	}
}

// WithReader overrides the input stream.
func WithReader(r io.Reader) Option {
	return func(h *Handler) {
		if r != nil {
			h.r = r
		}
	}
}

// WithWriter overrides the output stream.
func WithWriter(w io.Writer) Option {
	return func(h *Handler) {
		if w != nil {
			h.w = w
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.l = l
		}
	}
}

// WithRegisterer records request metrics in reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(h *Handler) {
		if reg != nil {
			h.reg = reg
		}
	}
}

// WithChunkSize sets how many bytes are requested per read. Non-positive
// values are ignored.
func WithChunkSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.chunkSize = n
		}
	}
}

// WithMaxFrameSize bounds a single inbound message. Larger frames are
// answered with a parse error and skipped.
func WithMaxFrameSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxFrame = n
		}
	}
}

// WithTracerProvider starts request spans from tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(h *Handler) {
		if tp != nil {
			h.tp = tp
		}
	}
}
