package layout

import (
	"math"
	"testing"
)

// TestPtPxRoundTrip 验证像素字号与画布字号的往返精度。
func TestPtPxRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 42, 96, 200, 1000}
	for _, px := range samples {
		back := PxToPt(px) * PtToMm
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%g back=%g diff=%g", px, back, diff)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want float64 }{
		{50, 5, 90, 50},
		{-1e9, 5, 90, 5},
		{1e9, 5, 90, 90},
		{math.NaN(), 40, 80, 40},
		{math.Inf(1), 40, 80, 80},
		{math.Inf(-1), -30, 130, -30},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%g,%g,%g)=%g want %g", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#F0F4F8":   {0xF0, 0xF4, 0xF8},
		"fff":       {255, 255, 255},
		"#1a1a2eff": {0x1a, 0x1a, 0x2e},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "#12", "#GGGGGG"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) 应失败", bad)
		}
	}
}

func TestAlignOffset(t *testing.T) {
	if got := AlignOffset(100, 40, "center"); got != 30 {
		t.Fatalf("center: %g", got)
	}
	if got := AlignOffset(100, 40, "right"); got != 60 {
		t.Fatalf("right: %g", got)
	}
	if got := AlignOffset(100, 140, "right"); got != 0 {
		t.Fatalf("溢出时应为 0: %g", got)
	}
}
