package testlog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// CapturedRecord is a log record together with the attributes inherited from
// the logger that emitted it.
type CapturedRecord struct {
	Inherited []slog.Attr
	*slog.Record
}

func (r *CapturedRecord) AttrValue(name string) (v any) {
	found := false
	r.Record.Attrs(func(a slog.Attr) bool {
		if a.Key == name {
			v = a.Value.Any()
			found = true
			return false
		}
		return true
	})
	if found {
		return v
	}
	for _, a := range r.Inherited {
		if a.Key == name {
			return a.Value.Any()
		}
	}
	return nil
}

type capturedLogs struct {
	mu      sync.Mutex
	records []*CapturedRecord
}

// CapturingHandler captures all log records and forwards them to a delegate.
type CapturingHandler struct {
	handler slog.Handler
	logs    *capturedLogs
	attrs   []slog.Attr
}

var _ slog.Handler = (*CapturingHandler)(nil)

func CaptureLogger(t Testing, level slog.Level) (log.Logger, *CapturingHandler) {
	var ch *CapturingHandler
	l := LoggerWithHandlerMod(t, level, func(h slog.Handler) slog.Handler {
		ch = &CapturingHandler{handler: h, logs: new(capturedLogs)}
		return ch
	})
	return l, ch
}

func (c *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	c.logs.mu.Lock()
	c.logs.records = append(c.logs.records, &CapturedRecord{Inherited: c.attrs, Record: &r})
	c.logs.mu.Unlock()
	return c.handler.Handle(ctx, r)
}

func (c *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	inherited := append(append([]slog.Attr{}, c.attrs...), attrs...)
	return &CapturingHandler{handler: c.handler.WithAttrs(attrs), logs: c.logs, attrs: inherited}
}

func (c *CapturingHandler) WithGroup(name string) slog.Handler {
	return &CapturingHandler{handler: c.handler.WithGroup(name), logs: c.logs}
}

func (c *CapturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return c.handler.Enabled(ctx, level)
}

func (c *CapturingHandler) Clear() {
	c.logs.mu.Lock()
	defer c.logs.mu.Unlock()
	c.logs.records = c.logs.records[:0]
}

type LogFilter func(record *CapturedRecord) bool

func NewLevelFilter(level slog.Level) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Level == level
	}
}

func NewMessageFilter(message string) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Message == message
	}
}

func NewMessageContainsFilter(message string) LogFilter {
	return func(r *CapturedRecord) bool {
		return strings.Contains(r.Message, message)
	}
}

func NewAttributesFilter(key, value string) LogFilter {
	return func(r *CapturedRecord) bool {
		v := r.AttrValue(key)
		if v == nil {
			return false
		}
		s, ok := v.(string)
		return ok && s == value
	}
}

func (c *CapturingHandler) FindLog(filters ...LogFilter) *CapturedRecord {
	logs := c.FindLogs(filters...)
	if len(logs) == 0 {
		return nil
	}
	return logs[0]
}

func (c *CapturingHandler) FindLogs(filters ...LogFilter) []*CapturedRecord {
	c.logs.mu.Lock()
	defer c.logs.mu.Unlock()
	var out []*CapturedRecord
outer:
	for _, record := range c.logs.records {
		for _, filter := range filters {
			if !filter(record) {
				continue outer
			}
		}
		out = append(out, record)
	}
	return out
}
