// Package logging routes the standard logger into a rotating file. A TUI
// program owns the terminal, so nothing may write to stderr while it runs;
// every log.Printf in the codebase lands here instead.
package logging

import (
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the default logger at a rotating file. An empty path
// silences logging entirely. The returned func closes the sink.
func Setup(path string, maxSizeMB, maxBackups int) func() error {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() error { return nil }
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	log.SetOutput(sink)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return sink.Close
}
