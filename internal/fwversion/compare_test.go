package fwversion

import (
	"errors"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2.9.0", "2.9.0", 0},
		{"2.8.9", "2.9.0", -1},
		{"3.0", "2.9.9", 1},
		{"v2.9.0", "2.9.0", 0},
		{"2.9.0", "v2.9.0", 0},
		{"v2.9.0", "2.9.1", -1},
		{"v2.9.0", "2.10.0", -1},
		{"v2.9.1", "2.9.0", 1},
		{"v2.8.0", "2.9.0", -1},
		{"2.9", "2.9.0", 0},
		{"2.9.0.1", "2.9.0", 1},
		{"0.0.1", "0.0.2", -1},
		{"10.0.0", "9.9.9", 1},
	}

	for _, tt := range tests {
		got, err := Compare(tt.a, tt.b)
		if err != nil {
			t.Errorf("Compare(%q, %q) error = %v", tt.a, tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

// Compare must be antisymmetric: swapping arguments negates the result.
func TestCompareAntisymmetric(t *testing.T) {
	pairs := [][2]string{
		{"2.9.0", "2.9.1"},
		{"2.8.9", "3.0"},
		{"1.0", "1.0.0"},
		{"v2.9.0", "2.10.0"},
	}

	for _, p := range pairs {
		ab, err := Compare(p[0], p[1])
		if err != nil {
			t.Fatalf("Compare(%q, %q) error = %v", p[0], p[1], err)
		}
		ba, err := Compare(p[1], p[0])
		if err != nil {
			t.Fatalf("Compare(%q, %q) error = %v", p[1], p[0], err)
		}
		if ab != -ba {
			t.Errorf("Compare(%q, %q) = %d but Compare(%q, %q) = %d", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestCompareTransitive(t *testing.T) {
	// a < b and b < c must imply a < c for every ordered triple.
	ordered := []string{"2.8.0", "2.8.9", "2.9.0", "2.9.9", "3.0", "3.0.1"}

	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			got, err := Compare(ordered[i], ordered[j])
			if err != nil {
				t.Fatalf("Compare(%q, %q) error = %v", ordered[i], ordered[j], err)
			}
			if got != -1 {
				t.Errorf("Compare(%q, %q) = %d, want -1", ordered[i], ordered[j], got)
			}
		}
	}
}

func TestCompareMalformed(t *testing.T) {
	malformed := []string{"abc", "", "2.x.0", "1..2", "2.9-rc1"}

	for _, v := range malformed {
		_, err := Compare(v, "2.9.0")
		if !errors.Is(err, ErrMalformedVersion) {
			t.Errorf("Compare(%q, \"2.9.0\") error = %v, want ErrMalformedVersion", v, err)
		}
		_, err = Compare("2.9.0", v)
		if !errors.Is(err, ErrMalformedVersion) {
			t.Errorf("Compare(\"2.9.0\", %q) error = %v, want ErrMalformedVersion", v, err)
		}
	}
}

func TestUpdateNeeded(t *testing.T) {
	tests := []struct {
		current, candidate string
		want               bool
	}{
		{"v2.9.0", "2.9.0", false},
		{"v2.9.0", "2.9.1", true},
		{"v2.9.0", "2.10.0", true},
		{"v2.9.1", "2.9.0", false},
		{"v2.8.0", "2.9.0", true},
		{"2.9.0", "v2.9.0", false},
	}

	for _, tt := range tests {
		got, err := UpdateNeeded(tt.current, tt.candidate)
		if err != nil {
			t.Errorf("UpdateNeeded(%q, %q) error = %v", tt.current, tt.candidate, err)
			continue
		}
		if got != tt.want {
			t.Errorf("UpdateNeeded(%q, %q) = %v, want %v", tt.current, tt.candidate, got, tt.want)
		}
	}
}

// A device reporting garbage must fail open: update needed, error reported.
func TestUpdateNeededMalformedFailsOpen(t *testing.T) {
	got, err := UpdateNeeded("garbage", "2.9.0")
	if !errors.Is(err, ErrMalformedVersion) {
		t.Errorf("error = %v, want ErrMalformedVersion", err)
	}
	if !got {
		t.Error("UpdateNeeded with malformed current version should report true")
	}
}
