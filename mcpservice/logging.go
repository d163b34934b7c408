package mcpservice

import (
	"errors"
	"log/slog"

	"github.com/ggoodman/weather-mcp-go/mcp"
)

// slogLevelVarLogging maps MCP LoggingLevel onto a slog.LevelVar. This adjusts
// the process-wide slog level when handlers were created from the same
// LevelVar.
type slogLevelVarLogging struct{ lv *slog.LevelVar }

func (l *slogLevelVarLogging) SetLevel(level mcp.LoggingLevel) error {
	if l == nil || l.lv == nil {
		return nil
	}
	slogLevel, err := SlogLevel(level)
	if err != nil {
		return err
	}
	l.lv.Set(slogLevel)
	return nil
}

// SlogLevel converts an MCP logging level to the closest slog level.
func SlogLevel(level mcp.LoggingLevel) (slog.Level, error) {
	switch level {
	case mcp.LoggingLevelDebug:
		return slog.LevelDebug, nil
	case mcp.LoggingLevelInfo, mcp.LoggingLevelNotice:
		// Map notice to info
		return slog.LevelInfo, nil
	case mcp.LoggingLevelWarning:
		return slog.LevelWarn, nil
	case mcp.LoggingLevelError, mcp.LoggingLevelCritical, mcp.LoggingLevelAlert, mcp.LoggingLevelEmergency:
		// Map error and above to error
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLoggingLevel
	}
}

var (
	// ErrInvalidLoggingLevel indicates the provided level is not one of the
	// protocol-defined LoggingLevel values.
	ErrInvalidLoggingLevel = errors.New("invalid logging level")
	// ErrLoggingUnsupported is returned by SetLogLevel on a server without a
	// logging capability.
	ErrLoggingUnsupported = errors.New("logging capability not enabled")
)
