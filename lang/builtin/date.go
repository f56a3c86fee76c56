package builtin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
)

// DefaultDateLayout is used when date or localdate get no layout.
const DefaultDateLayout = time.DateOnly

// date parses a date in almost any format and prints it with a Go time
// layout: date(value [, layout]). The value "now" is the current time.
func date(_ context.Context, args ...string) (any, error) {
	t, err := parseTime(arg(args, 0))
	if err != nil {
		return nil, err
	}

	return t.Format(layout(arg(args, 1))), nil
}

// localdate is date with month and day names in a locale:
// localdate(value, locale [, layout]).
func localdate(_ context.Context, args ...string) (any, error) {
	t, err := parseTime(arg(args, 0))
	if err != nil {
		return nil, err
	}

	return monday.Format(t, layout(arg(args, 2)), locale(arg(args, 1))), nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return time.Now(), nil
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date: %w", err)
	}

	return t, nil
}

// layouts names the layouts of package time, matched case-insensitively.
var layouts = map[string]string{
	"layout":      time.Layout,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
}

// layout resolves a layout name such as "RFC3339" or "Kitchen", otherwise s
// is itself a reference-time layout.
func layout(s string) string {
	name := strings.TrimSpace(s)
	if name == "" {
		return DefaultDateLayout
	}

	if l, ok := layouts[strings.ToLower(name)]; ok {
		return l
	}

	return s
}

// locale maps "de", "de_DE" or "de-de" to a supported locale, falling back
// to US English.
func locale(s string) monday.Locale {
	want := strings.ReplaceAll(strings.TrimSpace(s), "-", "_")

	for _, l := range monday.ListLocales() {
		if strings.EqualFold(string(l), want) {
			return l
		}
	}

	base, _, _ := strings.Cut(want, "_")

	for _, l := range monday.ListLocales() {
		prefix, _, _ := strings.Cut(string(l), "_")
		if strings.EqualFold(prefix, base) {
			return l
		}
	}

	return monday.LocaleEnUS
}
