package monitor

import "testing"

func TestWatermarkAdvance(t *testing.T) {
	var wm Watermark
	if wm.LastSeen() != "" {
		t.Fatalf("new watermark should be empty")
	}
	if !wm.Advance("100") || wm.LastSeen() != "100" {
		t.Fatalf("first advance failed: %q", wm.LastSeen())
	}
	if wm.Advance("99") {
		t.Errorf("watermark rolled back")
	}
	if wm.Advance("100") {
		t.Errorf("equal id should not count as an advance")
	}
	if wm.Advance("") {
		t.Errorf("empty id should be ignored")
	}
	if !wm.Advance("1000") || wm.LastSeen() != "1000" {
		t.Errorf("numeric comparison broken: %q", wm.LastSeen())
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"1811111111111111111", "1811111111111111112", -1},
		{"1000", "999", 1},
		{"007", "7", 0},
		{"abc", "abd", -1},
	}
	for _, tt := range tests {
		if got := CompareIDs(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareIDs(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
