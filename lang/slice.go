package lang

import (
	"math"
	"strings"
)

// ParseSlice interprets a rendered slice spec against a list of length
// items and returns the half-open range [start, end) it selects.
//
// A spec of one part is a limit counted from the first item. Two or more
// parts are "offset,limit" where offset is 1-based. An offset that is empty,
// not a number, or below 1 means 1. A limit that is empty or not a number
// means no limit, and a negative limit selects nothing. The range is clamped
// to the list.
func ParseSlice(spec string, length int) (start, end int) {
	parts := strings.Split(spec, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	offset, limit := 1, parts[0]
	if len(parts) > 1 {
		if n, ok := leadingInt(parts[0]); ok && n >= 1 {
			offset = n
		}

		limit = parts[1]
	}

	start = min(offset-1, length)
	end = length

	if n, ok := leadingInt(limit); ok {
		end = start + min(max(n, 0), length-start)
	}

	end = min(max(end, start), length)

	return start, end
}

// FullSlice returns the range selecting all length items.
func FullSlice(length int) (start, end int) { return 0, length }

// leadingInt parses an optional sign followed by the leading decimal digits
// of s, ignoring anything after them.
func leadingInt(s string) (int, bool) {
	i, neg := 0, false

	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	n, digits := 0, 0

	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > (math.MaxInt32-int(s[i]-'0'))/10 {
			n = math.MaxInt32
			continue
		}

		n = n*10 + int(s[i]-'0')
		digits++
	}

	if digits == 0 {
		return 0, false
	}

	if neg {
		n = -n
	}

	return n, true
}
