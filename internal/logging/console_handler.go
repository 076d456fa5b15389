package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/backmassage/speedy/internal/term"
)

const consoleTimeFormat = "2006-01-02 15:04:05"

// consoleHandler renders "ts [LEVEL] message key=value" lines. Error records
// go to errOut when it is set.
type consoleHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	errOut io.Writer
	level  slog.Leveler
	color  bool
	attrs  []slog.Attr
	prefix string
}

func newConsoleHandler(out, errOut io.Writer, level slog.Leveler, color bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, out: out, errOut: errOut, level: level, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	buf.WriteString(ts.Format(consoleTimeFormat))
	buf.WriteByte(' ')

	label, color := levelLabel(record.Level)
	if h.color && color != "" {
		buf.WriteString(color + "[" + label + "]" + term.NC)
	} else {
		buf.WriteString("[" + label + "]")
	}
	buf.WriteByte(' ')
	buf.WriteString(record.Message)

	for _, a := range h.attrs {
		h.writeAttr(&buf, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	out := h.out
	if record.Level >= slog.LevelError && h.errOut != nil {
		out = h.errOut
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := out.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, p, ga)
		}
		return
	}

	buf.WriteByte(' ')
	if h.color {
		buf.WriteString(term.Dim)
	}
	buf.WriteString(prefix + a.Key + "=")
	buf.WriteString(formatValue(a.Value))
	if h.color {
		buf.WriteString(term.NC)
	}
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindDuration:
		s = v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		s = v.Time().Format(time.RFC3339)
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return strconv.Quote(s)
	}
	return s
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
