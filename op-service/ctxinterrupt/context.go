package ctxinterrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// DefaultInterruptSignals is a set of default interrupt signals.
var DefaultInterruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// WithCancelOnInterrupt returns a context that is cancelled when the process receives one of
// DefaultInterruptSignals, or when the parent context is done.
func WithCancelOnInterrupt(ctx context.Context) context.Context {
	inner, cancel := context.WithCancel(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, DefaultInterruptSignals...)
	go func() {
		defer signal.Stop(sigCh)
		defer cancel()
		select {
		case <-sigCh:
		case <-inner.Done():
		}
	}()
	return inner
}
