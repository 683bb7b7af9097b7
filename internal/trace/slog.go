package trace

import (
	"context"
	"log/slog"
)

// SlogTracer forwards events to a structured logger: span ends and points
// at Info, span begins at Debug.
type SlogTracer struct {
	log   *slog.Logger
	level Level
}

func NewSlogTracer(log *slog.Logger, level Level) *SlogTracer {
	if log == nil {
		log = slog.Default()
	}
	return &SlogTracer{log: log, level: level}
}

func (t *SlogTracer) Emit(ev *Event) {
	if ev == nil || (!t.level.ShouldEmit(ev.Scope) && ev.Kind != KindPoint) {
		return
	}
	attrs := []slog.Attr{
		slog.String("scope", ev.Scope.String()),
		slog.Uint64("span", ev.SpanID),
	}
	if ev.ParentID != 0 {
		attrs = append(attrs, slog.Uint64("parent", ev.ParentID))
	}
	if ev.Detail != "" {
		attrs = append(attrs, slog.String("detail", ev.Detail))
	}
	for k, v := range ev.Extra {
		attrs = append(attrs, slog.String(k, v))
	}
	lvl := slog.LevelInfo
	switch ev.Kind {
	case KindSpanBegin:
		lvl = slog.LevelDebug
	case KindSpanEnd:
		attrs = append(attrs, slog.Duration("elapsed", ev.Elapsed))
	}
	t.log.LogAttrs(context.Background(), lvl, ev.Kind.String()+" "+ev.Name, attrs...)
}

func (t *SlogTracer) Flush() error  { return nil }
func (t *SlogTracer) Close() error  { return nil }
func (t *SlogTracer) Level() Level  { return t.level }
func (t *SlogTracer) Enabled() bool { return t.level > LevelOff }
