// Package version parses and orders dotted Kubernetes release versions.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedVersion is returned when a version string does not carry
// at least three numeric components.
var ErrMalformedVersion = errors.New("malformed version")

var nonVersionChars = regexp.MustCompile(`[^0-9.]`)

// Version is a major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int

	// Raw is the string the version was parsed from.
	Raw string
}

// Sanitize drops everything after the first '-' (pre-release or build
// suffix such as "-eks-5") and then every character that is not a digit
// or a dot, so "v1.18.3-eks-5" becomes "1.18.3".
func Sanitize(raw string) string {
	head, _, _ := strings.Cut(raw, "-")
	return nonVersionChars.ReplaceAllString(head, "")
}

// Parse converts raw into a Version. Only the first three components are
// kept, but every component must be numeric.
func Parse(raw string) (Version, error) {
	tokens := strings.Split(Sanitize(raw), ".")
	if len(tokens) < 3 {
		return Version{}, fmt.Errorf("%w: %q has fewer than 3 components", ErrMalformedVersion, raw)
	}

	nums := make([]int, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q has non-numeric component %q", ErrMalformedVersion, raw, tok)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Raw: raw}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constants.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 depending on whether a is older than, equal
// to, or newer than b. Components are compared numerically, so 1.20.0 is
// newer than 1.9.5. Raw is ignored.
func Compare(a, b Version) int {
	for _, pair := range [3][2]int{{a.Major, b.Major}, {a.Minor, b.Minor}, {a.Patch, b.Patch}} {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}
	return 0
}

// SameMinor reports whether a and b sit on the same major.minor release line.
func (v Version) SameMinor(o Version) bool {
	return v.Major == o.Major && v.Minor == o.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
