// Package errutil bridges oops errors and structured logging.
package errutil

import (
	"fmt"
	"log/slog"

	"github.com/samber/oops"
)

// Attrs flattens an error into slog key/value pairs, unpacking the oops
// code and context when present.
func Attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := codeString(oopsErr); code != "" {
		attrs = append(attrs, "code", code)
	}
	for k, v := range oopsErr.Context() {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// LogError logs err at error level with its oops code and context.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, Attrs(err)...)
}

// Code returns the oops code of err, or "" when it has none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	return codeString(oopsErr)
}

func codeString(oopsErr oops.OopsError) string {
	switch c := any(oopsErr.Code()).(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
