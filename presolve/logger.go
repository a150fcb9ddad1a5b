package presolve

import (
	"fmt"
	"io"
	"os"
)

// LogLevel controls the amount of logger output.
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogSummary print one line per presolve and postsolve run
	LogSummary LogLevel = 0
	// LogPass print also per-pass row, column and nonzero counts
	LogPass LogLevel = 1
	// LogTrace print every applied reduction
	LogTrace LogLevel = 99
)

// Logger handles logging output for presolve.
// Note the writer must be thread-safe if shared.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages. Defaults to os.Stderr.
}

func (l *Logger) enable(level LogLevel) bool {
	return l != nil && l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	w := l.Msg
	if w == nil {
		w = os.Stderr
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(w, format, a...)
	} else {
		_, _ = fmt.Fprint(w, format)
	}
}
