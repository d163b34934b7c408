package mcpservice

import (
	"context"
	"errors"
	"sync"

	"github.com/ggoodman/weather-mcp-go/mcp"
)

// ToolResponseWriter accumulates the content blocks of one tool call. The
// handler's writer is finalized by the dispatcher once the handler returns
// nil; appends after that fail with ErrFinalized. Appends also fail once the
// call's context is done.
type ToolResponseWriter interface {
	// AppendText adds a text block. Empty text is dropped.
	AppendText(text string) error
	AppendBlocks(blocks ...mcp.ContentBlock) error
	Result() *mcp.CallToolResult
}

// ErrFinalized is returned by appends after Result.
var ErrFinalized = errors.New("mcpservice: tool result already finalized")

type toolResponseWriter struct {
	ctx context.Context

	mu      sync.Mutex
	done    bool
	blocks []mcp.ContentBlock
}

var _ ToolResponseWriter = (*toolResponseWriter)(nil)

func newToolResponseWriter(ctx context.Context) *toolResponseWriter {
	return &toolResponseWriter{ctx: ctx}
}

func (w *toolResponseWriter) AppendText(text string) error {
	if text == "" {
		return nil
	}
	return w.AppendBlocks(mcp.TextBlock(text))
}

func (w *toolResponseWriter) AppendBlocks(blocks ...mcp.ContentBlock) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return ErrFinalized
	}
	w.blocks = append(w.blocks, blocks...)
	return nil
}

func (w *toolResponseWriter) Result() *mcp.CallToolResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.done = true
	// Content is never null on the wire.
	content := make([]mcp.ContentBlock, len(w.blocks))
	copy(content, w.blocks)
	return &mcp.CallToolResult{Content: content}
}
