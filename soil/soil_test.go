package soil

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHumusClassToCorg(t *testing.T) {
	tests := []struct {
		class int64
		want  float64
	}{
		{0, 0},
		{1, 0.5 / 1.72},
		{4, 6.0 / 1.72},
		{5, 5.75},
		{7, 15},
		{8, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		if got := HumusClassToCorg(tt.class); !near(got, tt.want) {
			t.Errorf("HumusClassToCorg(%d) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestBulkDensityClassToRawDensity(t *testing.T) {
	tests := []struct {
		class int64
		clay  float64
		want  float64
	}{
		{2, 0.3, 1230},
		{1, 0, 1300},
		{5, 0.1, 2010},
		{9, 0.1, -90},
	}

	for _, tt := range tests {
		if got := BulkDensityClassToRawDensity(tt.class, tt.clay); !near(got, tt.want) {
			t.Errorf("BulkDensityClassToRawDensity(%d, %v) = %v, want %v",
				tt.class, tt.clay, got, tt.want)
		}
	}

	if got := BulkDensityClassToRawDensity(2, 0.3); got != 1230.0 {
		t.Errorf("class 2 with 0.3 clay = %v, want exactly 1230", got)
	}
}

func TestSandAndClayToLambda(t *testing.T) {
	if got := SandAndClayToLambda(0.93, 0.02); !near(got, 1.014135) {
		t.Errorf("SandAndClayToLambda(0.93, 0.02) = %v", got)
	}

	if got := SandAndClayToLambda(0, 0); !near(got, 0.35) {
		t.Errorf("SandAndClayToLambda(0, 0) = %v", got)
	}
}

func TestKA5Texture(t *testing.T) {
	tests := []struct {
		code string
		want Texture
		ok   bool
	}{
		{"Ss", Texture{0.93, 0.02}, true},
		{"Lt2", Texture{0.30, 0.30}, true},
		{"Hn", Texture{0.15, 0.10}, true},
		{"ss", Texture{}, false},
		{"", Texture{}, false},
	}

	for _, tt := range tests {
		got, ok := KA5Texture(tt.code)
		if ok != tt.ok || got != tt.want {
			t.Errorf("KA5Texture(%q) = %v, %v; want %v, %v", tt.code, got, ok, tt.want, tt.ok)
		}
	}

	if n := len(KA5Classes()); n != 48 {
		t.Errorf("KA5Classes() has %d entries, want 48", n)
	}
}

func TestSandAndClayToKA5(t *testing.T) {
	tests := []struct {
		sand, clay float64
		want       string
	}{
		{0.93, 0.02, "Ss"},
		{0.80, 0.02, "Su2"},
		{0.10, 0.04, "Uu"},
		{0.30, 0.30, "Lt2"},
		{0.17, 0.82, "Tt"},
		{0.02, 0.30, "Tu4"},
		{0.05, 0.30, "Tu3"},
		{0.60, 0.14, "Sl4"},
	}

	for _, tt := range tests {
		got, ok := SandAndClayToKA5(tt.sand, tt.clay)
		if !ok || got != tt.want {
			t.Errorf("SandAndClayToKA5(%v, %v) = %q, %v; want %q", tt.sand, tt.clay, got, ok, tt.want)
		}
	}

	for _, bad := range [][2]float64{{-0.1, 0.2}, {0.8, 0.5}, {0.2, 1.2}} {
		if code, ok := SandAndClayToKA5(bad[0], bad[1]); ok {
			t.Errorf("SandAndClayToKA5(%v, %v) = %q, want no match", bad[0], bad[1], code)
		}
	}
}
