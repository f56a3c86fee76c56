package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used to colorize log output. Styles come from a
// renderer bound to the output writer, so colors are dropped automatically
// when the writer is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, when lipgloss.Style
	level                             [4]lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		when: fg("4"),
		level: [4]lipgloss.Style{
			fg("4").Bold(true), // trace, debug
			fg("2").Bold(true), // info
			fg("3").Bold(true), // warn
			fg("1").Bold(true), // error
		},
	}
}

func (p palette) levelStyle(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.level[3]
	case l >= slog.LevelWarn:
		return p.level[2]
	case l >= slog.LevelInfo:
		return p.level[1]
	default:
		return p.level[0]
	}
}

// prettyHandler renders records either as colorized key=value lines or as
// indented, colorized JSON-like objects.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  palette
	format Format
	attrs  []slog.Attr
	group  string
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, format Format) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		mu:     &sync.Mutex{},
		w:      w,
		style:  makePalette(w),
		format: format,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = h.group + name + "."

	return &c
}

// qualify prefixes attribute keys with the handler's open groups.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + a.Key, Value: a.Value}
	}

	return out
}

// builtin applies ReplaceAttr to the record's built-in attributes.
func (h *prettyHandler) builtin(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if a := h.builtin(slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			attrs = append(attrs, a)
		}
	}

	level := slog.Any(slog.LevelKey, r.Level)
	if a := h.builtin(level); a.Key != "" {
		level = a
	}

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			attrs = append(attrs,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	attrs = append(attrs, slog.String(slog.MessageKey, r.Message))
	attrs = append(attrs, h.attrs...)

	var local []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		local = append(local, a)

		return true
	})

	attrs = append(attrs, h.qualify(local)...)

	var buf bytes.Buffer
	if h.format == FormatJSON {
		h.writeObject(&buf, r.Level, level, attrs)
	} else {
		h.writeLine(&buf, r.Level, level, attrs)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, l slog.Level, level slog.Attr, attrs []slog.Attr) {
	sep := func() {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
	}

	for i, a := range attrs {
		if a.Key == slog.MessageKey && i <= 2 {
			sep()
			buf.WriteString(h.style.levelStyle(l).Render(level.Value.String()))
		}

		sep()
		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.value(a.Value))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, l slog.Level, level slog.Attr, attrs []slog.Attr) {
	buf.WriteString("{\n")

	field := func(key, val string, last bool) {
		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(key))
		buf.WriteString(": ")
		buf.WriteString(val)

		if !last {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	for i, a := range attrs {
		if a.Key == slog.MessageKey && i <= 2 {
			field(level.Key, h.style.levelStyle(l).Render(level.Value.String()), false)
		}

		field(a.Key, h.value(a.Value), i == len(attrs)-1)
	}

	buf.WriteString("}\n")
}

func (h *prettyHandler) value(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(v.String())
	case slog.KindInt64:
		return h.style.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.style.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")
	case slog.KindDuration:
		return h.style.dur.Render(v.Duration().String())
	case slog.KindTime:
		return h.style.when.Render(v.Time().String())
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, a.Key+"="+h.value(a.Value))
		}

		return "{" + strings.Join(parts, " ") + "}"
	default:
		if v.Any() == nil {
			return h.style.key.Render("null")
		}

		return h.style.str.Render(v.String())
	}
}
