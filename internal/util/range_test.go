package util

import (
	"reflect"
	"testing"
)

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{name: "single value", spec: "5", want: []int{5}},
		{name: "simple range", spec: "1-5", want: []int{1, 2, 3, 4, 5}},
		{name: "comma separated", spec: "1,3,5", want: []int{1, 3, 5}},
		{name: "mixed", spec: "1-3,5,7-9", want: []int{1, 2, 3, 5, 7, 8, 9}},
		{name: "duplicates collapse", spec: "1,1,2-3,3", want: []int{1, 2, 3}},
		{name: "empty", spec: "", want: nil},
		{name: "inverted range errors", spec: "5-1", wantErr: true},
		{name: "garbage errors", spec: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandRange(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandRange(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestCompactRange(t *testing.T) {
	tests := []struct {
		values []int
		want   string
	}{
		{values: []int{1, 2, 3, 5, 7, 8, 9}, want: "1-3,5,7-9"},
		{values: []int{100}, want: "100"},
		{values: nil, want: ""},
		{values: []int{5, 1, 3, 2, 4}, want: "1-5"},
	}
	for _, tt := range tests {
		if got := CompactRange(tt.values); got != tt.want {
			t.Errorf("CompactRange(%v) = %q, want %q", tt.values, got, tt.want)
		}
	}
}

func TestExpandVLANRangeValidates(t *testing.T) {
	if _, err := ExpandVLANRange("1-4094"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ExpandVLANRange("0-10"); err == nil {
		t.Fatalf("expected error for VLAN 0")
	}
	if _, err := ExpandVLANRange("4000-4095"); err == nil {
		t.Fatalf("expected error for VLAN 4095")
	}
}

func TestRangesOverlap(t *testing.T) {
	if !RangesOverlap([]int{1, 2, 3}, []int{3, 4, 5}) {
		t.Error("expected overlap at 3")
	}
	if RangesOverlap([]int{1, 2, 3}, []int{4, 5, 6}) {
		t.Error("expected no overlap")
	}
	if RangesOverlap(nil, []int{1}) {
		t.Error("expected no overlap with empty slice")
	}
}
