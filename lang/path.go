package lang

import "strings"

// Resolve walks data one segment at a time and returns the value at the end
// of path. Every intermediate value must be a *Data; otherwise, or when any
// segment is missing, the path is absent. An empty path is absent.
func Resolve(data *Data, path []string) (Value, bool) {
	if len(path) == 0 {
		return nil, false
	}

	cur := data

	for i, seg := range path {
		v, ok := cur.Lookup(seg)
		if !ok {
			return nil, false
		}

		if i == len(path)-1 {
			return v, true
		}

		if cur, ok = v.(*Data); !ok {
			return nil, false
		}
	}

	return nil, false
}

// ResolveKey looks key up directly and, when that fails and key contains a
// ".", as a dotted path.
func ResolveKey(data *Data, key string) (Value, bool) {
	if v, ok := data.Lookup(key); ok {
		return v, true
	}

	if !strings.Contains(key, ".") {
		return nil, false
	}

	return Resolve(data, strings.Split(key, "."))
}
