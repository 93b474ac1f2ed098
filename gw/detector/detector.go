package detector

import (
	"errors"
	"fmt"
	"strings"
)

// Detector identifies one interferometer.
type Detector int

const (
	H1 Detector = iota
	L1
	V1
)

// Count is the number of known detectors.
const Count = 3

// ErrUnknown is returned by [Parse] for unrecognized names.
var ErrUnknown = errors.New("detector: unknown detector")

// All lists every detector in enumeration order.
var All = [Count]Detector{H1, L1, V1}

// String returns the short interferometer code, e.g. "H1".
func (d Detector) String() string {
	switch d {
	case H1:
		return "H1"
	case L1:
		return "L1"
	case V1:
		return "V1"
	default:
		return fmt.Sprintf("Detector(%d)", int(d))
	}
}

// Label returns the observatory name.
func (d Detector) Label() string {
	switch d {
	case H1:
		return "LIGO Hanford"
	case L1:
		return "LIGO Livingston"
	case V1:
		return "Virgo"
	default:
		return d.String()
	}
}

// Valid reports whether d is one of the known detectors.
func (d Detector) Valid() bool {
	return d >= H1 && d <= V1
}

// Parse maps a case-insensitive code ("h1", "L1", ...) to a Detector.
func Parse(s string) (Detector, error) {
	for _, d := range All {
		if strings.EqualFold(strings.TrimSpace(s), d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknown, s)
}

// ParseList parses several codes, rejecting duplicates.
func ParseList(names []string) ([]Detector, error) {
	out := make([]Detector, 0, len(names))
	var seen Set[bool]
	for _, name := range names {
		d, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			return nil, fmt.Errorf("detector: duplicate %s", d)
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}

// Set holds one value per detector.
type Set[T any] [Count]T

// Get returns the value for d.
func (s *Set[T]) Get(d Detector) T {
	return s[d]
}

// Put stores v for d.
func (s *Set[T]) Put(d Detector, v T) {
	s[d] = v
}

// Map applies fn to every entry and returns the results.
func Map[T, U any](s Set[T], fn func(Detector, T) U) Set[U] {
	var out Set[U]
	for _, d := range All {
		out[d] = fn(d, s[d])
	}
	return out
}
