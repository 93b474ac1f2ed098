// Package param defines the nine-component source parameter vector.
package param

import (
	"fmt"
	"math"
)

// Dim is the number of source parameters.
const Dim = 9

// Index constants into a Vector.
const (
	Mass           = iota // primary mass m1, solar masses
	Ratio                 // mass ratio q = m2/m1
	Distance              // luminosity distance, Mpc
	TimeShift             // coalescence time offset from the reference GPS time, s
	Phase                 // coalescence phase, rad
	RightAscension        // rad
	Declination           // rad
	Inclination           // rad
	Polarization          // rad
)

// Names are the column names of each component, in Vector order.
var Names = [Dim]string{
	"mass", "ratio", "distance", "time_shift", "phase", "ra", "dec", "incl", "pol",
}

// Vector holds one point in parameter space.
type Vector [Dim]float64

// FromSlice copies x into a Vector. x must have Dim elements.
func FromSlice(x []float64) (Vector, error) {
	var v Vector
	if len(x) != Dim {
		return v, fmt.Errorf("param: expected %d values, got %d", Dim, len(x))
	}
	copy(v[:], x)
	return v, nil
}

// Slice returns a copy of v as a slice.
func (v Vector) Slice() []float64 {
	return append([]float64(nil), v[:]...)
}

// SecondaryMass returns q*m1.
func (v Vector) SecondaryMass() float64 {
	return v[Ratio] * v[Mass]
}

// IsFinite reports whether every component is finite.
func (v Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Index returns the position of a named component.
func Index(name string) (int, error) {
	for i, n := range Names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("param: unknown parameter %q", name)
}

// Range is a closed interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether Min <= x <= Max.
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

// Width returns Max-Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Bounds holds one Range per component.
type Bounds [Dim]Range

// Within reports whether every component of v lies in its range.
func (b Bounds) Within(v Vector) bool {
	for i, r := range b {
		if !r.Contains(v[i]) {
			return false
		}
	}
	return true
}

// Validate checks that every range is finite and ordered.
func (b Bounds) Validate() error {
	for i, r := range b {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max {
			return fmt.Errorf("param: invalid range for %s: [%g, %g]", Names[i], r.Min, r.Max)
		}
	}
	return nil
}

// SamplingBounds are the walker initialization bounds of the reference
// GW190521 run.
func SamplingBounds() Bounds {
	return Bounds{
		Mass:           {80, 200},
		Ratio:          {0.5, 0.95},
		Distance:       {500, 5000},
		TimeShift:      {0.02, 0.04},
		Phase:          {0, 2 * math.Pi},
		RightAscension: {0, 2 * math.Pi},
		Declination:    {-math.Pi / 2, math.Pi / 2},
		Inclination:    {0, math.Pi},
		Polarization:   {0, 2 * math.Pi},
	}
}
