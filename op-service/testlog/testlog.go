// Package testlog provides a log handler for unit tests.
package testlog

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

var useColorInTestLog = os.Getenv("TASK_TESTLOG_DISABLE_COLOR") != "true"

// Testing interface to log to. Standard Go testing.TB implements this.
type Testing interface {
	Logf(format string, args ...any)
	Helper()
	Name() string
	Cleanup(func())
}

// testWriter forwards each formatted record to t.Logf. Writes after the test
// has completed are dropped, since t.Logf panics at that point.
type testWriter struct {
	t    Testing
	mu   sync.Mutex
	done bool
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.done {
		w.t.Helper()
		w.t.Logf("%s", strings.TrimRight(string(p), "\n"))
	}
	return len(p), nil
}

func newTestWriter(t Testing) *testWriter {
	w := &testWriter{t: t}
	t.Cleanup(func() {
		w.mu.Lock()
		w.done = true
		w.mu.Unlock()
	})
	return w
}

// Logger returns a logger which logs to the unit test log of t.
func Logger(t Testing, level slog.Level) log.Logger {
	return LoggerWithHandlerMod(t, level)
}

type HandlerMod func(slog.Handler) slog.Handler

func LoggerWithHandlerMod(t Testing, level slog.Level, handlerMods ...HandlerMod) log.Logger {
	var handler slog.Handler = log.NewTerminalHandlerWithLevel(newTestWriter(t), level, useColorInTestLog)
	for _, mod := range handlerMods {
		handler = mod(handler)
	}
	return log.NewLogger(handler)
}
