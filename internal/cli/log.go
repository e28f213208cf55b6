// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// kitLogger adapts l to the go-kit interface used by the parser. Events are
// logged at debug level, with the "msg" field as the message and the
// remaining fields as key-value pairs. The go-kit level field is dropped.
func kitLogger(l *log.Logger) kitlog.Logger {
	return kitlog.LoggerFunc(func(kv ...any) error {
		var msg any = ""
		rest := make([]any, 0, len(kv))
		for i := 0; i+1 < len(kv); i += 2 {
			switch kv[i] {
			case "msg":
				msg = kv[i+1]
			case level.Key():
			default:
				rest = append(rest, kv[i], kv[i+1])
			}
		}
		l.Debug(msg, rest...)
		return nil
	})
}
