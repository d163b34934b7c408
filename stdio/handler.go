package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/ggoodman/weather-mcp-go/internal/engine"
	"github.com/ggoodman/weather-mcp-go/internal/jsonrpc"
	"github.com/ggoodman/weather-mcp-go/internal/logctx"
	"github.com/ggoodman/weather-mcp-go/mcpservice"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const defaultChunkSize = 64 << 10

// ErrAlreadyServed is returned when Serve is called a second time.
var ErrAlreadyServed = errors.New("stdio: handler already served")

// Handler is a single-connection stdio transport that reads newline-delimited
// JSON-RPC messages from an io.Reader and writes responses to an io.Writer. By
// default, it uses os.Stdin and os.Stdout.
//
// The handler is transport-only; it delegates all MCP semantics to an engine
// built over the provided *mcpservice.Server.
type Handler struct {
	srv *mcpservice.Server

	r   io.Reader
	w   io.Writer
	l   *slog.Logger
	reg prometheus.Registerer
	tp  trace.TracerProvider

	chunkSize int
	maxFrame  int

	served atomic.Bool
}

// NewHandler constructs a stdio Handler with defaults and applies options.
func NewHandler(srv *mcpservice.Server, opts ...Option) *Handler {
	h := &Handler{
		srv:       srv,
		r:         os.Stdin,
		w:         os.Stdout,
		l:         slog.Default(),
		chunkSize: defaultChunkSize,
		maxFrame:  jsonrpc.DefaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type readResult struct {
	data []byte
	err  error
}

// Serve runs the stdio event loop until EOF on the reader or the context is
// canceled. It is safe to call at most once per Handler.
//
// Messages are handled strictly one at a time in arrival order and every
// response is flushed before the next message is handled. Cancellation is
// observed between messages: a handler already running completes and its
// response is written before Serve returns. The output is flushed and, when
// it implements io.Closer, closed on every exit path.
//
// Serve returns nil on EOF or cancellation and an error when the stream
// itself fails.
func (h *Handler) Serve(ctx context.Context) (err error) {
	if !h.served.CompareAndSwap(false, true) {
		return ErrAlreadyServed
	}

	sessID := uuid.NewString()
	ctx = logctx.WithSessionData(ctx, &logctx.SessionData{SessionID: sessID, Transport: "stdio"})
	// Handlers are shielded from shutdown so a request already in flight
	// still gets its response.
	handlerCtx := context.WithoutCancel(ctx)

	opts := []engine.EngineOption{engine.WithLogger(h.l)}
	if h.tp != nil {
		opts = append(opts, engine.WithTracerProvider(h.tp))
	}
	if h.reg != nil {
		opts = append(opts, engine.WithRegisterer(h.reg))
	}
	eng := engine.NewEngine(h.srv, opts...)
	dec := jsonrpc.NewDecoder(jsonrpc.WithMaxFrameSize(h.maxFrame))
	bw := bufio.NewWriter(h.w)
	enc := jsonrpc.NewEncoder(bw)

	start := time.Now()
	h.l.InfoContext(ctx, "stdio.serve.start", slog.String("engine_id", eng.ID()))

	stop := make(chan struct{})
	chunks := make(chan readResult)
	go h.readLoop(chunks, stop)

	reason := "eof"
	defer func() {
		close(stop)
		if c, ok := h.r.(io.Closer); ok && h.r != os.Stdin {
			_ = c.Close()
		}
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("stdio: flush: %w", ferr)
		}
		if c, ok := h.w.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("stdio: close: %w", cerr)
			}
		}
		if err != nil {
			reason = "error"
		}
		h.l.InfoContext(ctx, "stdio.serve.stop",
			slog.String("reason", reason),
			slog.Bool("initialized", eng.Initialized()),
			slog.String("client", eng.ClientInfo().Name),
			slog.Int64("dur_ms", time.Since(start).Milliseconds()),
		)
	}()

	write := func(resp *jsonrpc.Response) error {
		if resp == nil {
			return nil
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("stdio: flush: %w", err)
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			reason = "canceled"
			return nil
		case rr := <-chunks:
			for msg, ferr := range dec.Feed(rr.data) {
				var resp *jsonrpc.Response
				if ferr != nil {
					resp = eng.HandleFrameError(handlerCtx, ferr)
				} else {
					resp = eng.Handle(handlerCtx, msg)
				}
				if err := write(resp); err != nil {
					return err
				}
				if ctx.Err() != nil {
					reason = "canceled"
					return nil
				}
			}
			if rr.err == nil {
				continue
			}
			if errors.Is(rr.err, io.EOF) || errors.Is(rr.err, io.ErrClosedPipe) {
				if n := dec.Buffered(); n > 0 {
					h.l.WarnContext(ctx, "stdio.read.partial_frame", slog.Int("bytes", n))
				}
				if ferr := dec.Close(); ferr != nil {
					if err := write(eng.HandleFrameError(handlerCtx, ferr)); err != nil {
						return err
					}
				}
				return nil
			}
			return fmt.Errorf("stdio: read: %w", rr.err)
		}
	}
}

// readLoop pumps chunks from the input until it fails or stop is closed.
// Each chunk gets a fresh buffer because the consumer may still hold the
// previous one.
func (h *Handler) readLoop(out chan<- readResult, stop <-chan struct{}) {
	for {
		buf := make([]byte, h.chunkSize)
		n, err := h.r.Read(buf)
		if n > 0 || err != nil {
			select {
			case out <- readResult{data: buf[:n], err: err}:
			case <-stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}
