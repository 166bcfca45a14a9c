// Package fwversion compares AxeOS firmware version strings.
//
// Device firmware versions observed in the field are strictly dotted-numeric
// (e.g. "2.9.0"), sometimes with a "v" prefix. This package deliberately does
// not implement full semantic versioning: there are no pre-release or build
// metadata semantics to support.
package fwversion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedVersion indicates a version string could not be parsed.
// Callers deciding whether to flash should treat this as "cannot determine,
// assume an update is needed" rather than failing the device.
var ErrMalformedVersion = errors.New("malformed version string")

// Compare compares two dotted-numeric version strings field by field.
// It returns -1 if a < b, 0 if a == b, and +1 if a > b.
// A leading non-numeric marker ("v2.9.0") is stripped before comparison, and
// missing trailing segments are treated as zero, so "3.0" > "2.9.9" and
// "2.9" == "2.9.0".
func Compare(a, b string) (int, error) {
	segsA, err := parse(a)
	if err != nil {
		return 0, err
	}
	segsB, err := parse(b)
	if err != nil {
		return 0, err
	}

	n := len(segsA)
	if len(segsB) > n {
		n = len(segsB)
	}

	for i := 0; i < n; i++ {
		var va, vb int
		if i < len(segsA) {
			va = segsA[i]
		}
		if i < len(segsB) {
			vb = segsB[i]
		}
		if va < vb {
			return -1, nil
		}
		if va > vb {
			return 1, nil
		}
	}

	return 0, nil
}

// UpdateNeeded reports whether a device running current should be flashed
// with candidate. A device whose version cannot be parsed is updated rather
// than skipped; the returned error still carries ErrMalformedVersion so the
// caller can log it.
func UpdateNeeded(current, candidate string) (bool, error) {
	cmp, err := Compare(current, candidate)
	if err != nil {
		return true, err
	}
	return cmp < 0, nil
}

// parse splits a version string into its numeric segments.
func parse(v string) ([]int, error) {
	s := strings.TrimSpace(v)

	// Strip a leading non-numeric marker such as "v" or "V".
	for len(s) > 0 && (s[0] < '0' || s[0] > '9') {
		s = s[1:]
	}

	if s == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedVersion, v)
	}

	parts := strings.Split(s, ".")
	segs := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q (segment %q)", ErrMalformedVersion, v, p)
		}
		segs = append(segs, n)
	}

	return segs, nil
}
