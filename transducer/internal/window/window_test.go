package window

import (
	"slices"
	"testing"
)

type ring struct{ items []int }

func (r ring) Len() int              { return len(r.items) }
func (r ring) Slice(lo, hi int) ring { return ring{items: r.items[lo:hi]} }

func TestLast(t *testing.T) {
	tests := []struct {
		name  string
		in    []int
		limit int
		want  []int
	}{
		{"trailing", []int{1, 2, 3, 4, 5}, 2, []int{4, 5}},
		{"limit exceeds", []int{1, 2}, 5, []int{1, 2}},
		{"zero limit", []int{1, 2, 3}, 0, []int{}},
		{"negative limit", []int{1, 2, 3}, -1, []int{}},
		{"empty", []int{}, 3, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Last(tt.in, tt.limit)
			if !ok {
				t.Fatal("expected slice to be sliceable")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDropLast(t *testing.T) {
	tests := []struct {
		name  string
		in    []int
		limit int
		want  []int
	}{
		{"trailing", []int{1, 2, 3, 4, 5}, 2, []int{1, 2, 3}},
		{"limit equals length", []int{1, 2}, 2, []int{}},
		{"limit exceeds", []int{1, 2}, 9, []int{}},
		{"zero limit", []int{1, 2, 3}, 0, []int{1, 2, 3}},
		{"negative limit", []int{1, 2, 3}, -2, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DropLast(tt.in, tt.limit)
			if !ok {
				t.Fatal("expected slice to be sliceable")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDropLast_DoesNotExposeTail(t *testing.T) {
	in := []int{1, 2, 3, 4}
	got, _ := DropLast(in, 2)
	got = append(got, 99)
	if in[2] != 3 {
		t.Errorf("append on windowed slice overwrote original: %v", in)
	}
	if !slices.Equal(got, []int{1, 2, 99}) {
		t.Errorf("got %v", got)
	}
}

func TestStrings(t *testing.T) {
	got, ok := Last("abcdef", 3)
	if !ok || got != "def" {
		t.Errorf("Last: got %q (ok=%v), want %q", got, ok, "def")
	}
	got, ok = DropLast("abcdef", 4)
	if !ok || got != "ab" {
		t.Errorf("DropLast: got %q (ok=%v), want %q", got, ok, "ab")
	}
}

func TestCustomSliceable(t *testing.T) {
	got, ok := Last(ring{items: []int{1, 2, 3}}, 1)
	if !ok {
		t.Fatal("expected custom type to be sliceable")
	}
	if !slices.Equal(got.items, []int{3}) {
		t.Errorf("got %v, want [3]", got.items)
	}
}

func TestNotSliceable(t *testing.T) {
	if _, ok := Last(42, 1); ok {
		t.Error("int should not be sliceable")
	}
	if _, ok := DropLast(map[string]int{"a": 1}, 1); ok {
		t.Error("map should not be sliceable")
	}
	var nilAny any
	if _, ok := Last(nilAny, 1); ok {
		t.Error("nil interface should not be sliceable")
	}
}
