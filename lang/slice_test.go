package lang

import "testing"

func TestParseSlice(t *testing.T) {
	tests := []struct {
		spec       string
		length     int
		start, end int
	}{
		{"", 5, 0, 5},
		{"3", 5, 0, 3},
		{" 4 ", 5, 0, 4},
		{"0", 5, 0, 0},
		{"-2", 5, 0, 0},
		{"9", 5, 0, 5},
		{"abc", 5, 0, 5},
		{"2,2", 5, 1, 3},
		{"2, 2", 5, 1, 3},
		{"0,2", 5, 0, 2},
		{"-3,2", 5, 0, 2},
		{"2,", 5, 1, 5},
		{"2,abc", 5, 1, 5},
		{",2", 5, 0, 2},
		{",,", 5, 0, 5},
		{"5,1", 5, 4, 5},
		{"6,1", 5, 5, 5},
		{"10,2", 5, 5, 5},
		{"3,10", 5, 2, 5},
		{"1,0", 5, 0, 0},
		{"4,1", 5, 3, 4},
		{"2,-1", 5, 1, 1},
		{"2,2,9", 5, 1, 3},
		{"3x,1", 5, 2, 3},
		{"2,3", 0, 0, 0},
		{"99999999999999999999", 5, 0, 5},
		{"2,99999999999999999999", 5, 1, 5},
		{"99999999999999999999,1", 5, 5, 5},
	}

	for _, tt := range tests {
		start, end := ParseSlice(tt.spec, tt.length)
		if start != tt.start || end != tt.end {
			t.Errorf("ParseSlice(%q, %d) = [%d, %d), want [%d, %d)",
				tt.spec, tt.length, start, end, tt.start, tt.end)
		}

		if start < 0 || end < start || end > tt.length {
			t.Errorf("ParseSlice(%q, %d) returned invalid range [%d, %d)",
				tt.spec, tt.length, start, end)
		}
	}
}

func TestFullSlice(t *testing.T) {
	if start, end := FullSlice(4); start != 0 || end != 4 {
		t.Errorf("FullSlice(4) = [%d, %d), want [0, 4)", start, end)
	}
}
