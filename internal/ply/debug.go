package ply

import (
	"io"
	"log"
)

var (
	opsLogger  *log.Logger
	diagLogger *log.Logger
)

// SetLogWriters configures the logging streams for the ply package.
// The package has no trace output; the parameter keeps the signature in
// line with the other packages. Pass nil for any writer to disable it.
func SetLogWriters(ops, diag, _ io.Writer) {
	opsLogger = newLogger("[ply] ", ops)
	diagLogger = newLogger("[ply] ", diag)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// opsf logs to the ops stream (skipped data, malformed input).
func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

// diagf logs to the diag stream (header summaries).
func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}
