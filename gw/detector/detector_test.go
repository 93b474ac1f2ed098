package detector

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Detector
	}{
		{"H1", H1},
		{"l1", L1},
		{" v1 ", V1},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := Parse("K1"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList([]string{"H1", "L1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != H1 || got[1] != L1 {
		t.Fatalf("got %v", got)
	}

	if _, err := ParseList([]string{"H1", "h1"}); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestSetMap(t *testing.T) {
	var s Set[int]
	s.Put(L1, 4)

	doubled := Map(s, func(_ Detector, v int) int { return 2 * v })
	if doubled.Get(L1) != 8 || doubled.Get(H1) != 0 {
		t.Fatalf("unexpected %v", doubled)
	}
}

func TestArmsOrthonormal(t *testing.T) {
	for _, d := range All {
		x, y := d.Site().Arms()
		if math.Abs(r3.Norm(x)-1) > 1e-12 || math.Abs(r3.Norm(y)-1) > 1e-12 {
			t.Fatalf("%v: arms not unit", d)
		}
		if math.Abs(r3.Dot(x, y)) > 1e-6 {
			t.Fatalf("%v: arms not orthogonal: %g", d, r3.Dot(x, y))
		}
		if math.Abs(r3.Dot(x, r3.Unit(d.Site().Vertex()))) > 5e-3 {
			t.Fatalf("%v: x arm not horizontal", d)
		}
	}
}

func TestResponseTraceless(t *testing.T) {
	for _, d := range All {
		r := d.Site().Response()
		tr := r.At(0, 0) + r.At(1, 1) + r.At(2, 2)
		if math.Abs(tr) > 1e-12 {
			t.Fatalf("%v: trace=%g", d, tr)
		}
	}
}

func TestVertexRadius(t *testing.T) {
	for _, d := range All {
		r := r3.Norm(d.Site().Vertex())
		if r < 6.35e6 || r > 6.39e6 {
			t.Fatalf("%v: radius=%g", d, r)
		}
	}
}

func TestAntennaPatternZenith(t *testing.T) {
	const gps = 1242442967.4

	for _, d := range All {
		s := d.Site()
		ra := GMST(gps) + s.Longitude
		fp, fc := d.AntennaPattern(ra, s.Latitude, 0.3, gps)
		if got := fp*fp + fc*fc; math.Abs(got-1) > 1e-9 {
			t.Fatalf("%v: overhead response=%g, want 1", d, got)
		}
	}
}

func TestAntennaPatternPolarizationInvariant(t *testing.T) {
	const (
		gps = 1242442967.4
		ra  = 0.164
		dec = -1.14
	)

	for _, d := range All {
		fp0, fc0 := d.AntennaPattern(ra, dec, 0, gps)
		want := fp0*fp0 + fc0*fc0
		if want > 1 {
			t.Fatalf("%v: response %g exceeds 1", d, want)
		}
		for _, psi := range []float64{0.4, 1.3, 2.9, 5.5} {
			fp, fc := d.AntennaPattern(ra, dec, psi, gps)
			if got := fp*fp + fc*fc; math.Abs(got-want) > 1e-12 {
				t.Fatalf("%v psi=%g: %g != %g", d, psi, got, want)
			}
		}
	}
}

func TestTimeDelayBounds(t *testing.T) {
	const gps = 1242442967.4
	sep := r3.Norm(r3.Sub(H1.Site().Vertex(), L1.Site().Vertex())) / SpeedOfLight

	for _, ra := range []float64{0, 1, 2.5, 4} {
		for _, dec := range []float64{-1.2, 0, 0.7} {
			for _, d := range All {
				if dt := d.TimeDelayFromEarthCenter(ra, dec, gps); math.Abs(dt) > 0.0214 {
					t.Fatalf("%v: delay %g exceeds earth radius", d, dt)
				}
			}
			diff := H1.TimeDelayFromEarthCenter(ra, dec, gps) - L1.TimeDelayFromEarthCenter(ra, dec, gps)
			if math.Abs(diff) > sep+1e-12 {
				t.Fatalf("H1-L1 delay %g exceeds baseline %g", diff, sep)
			}
		}
	}
}

func TestGMSTAtJ2000(t *testing.T) {
	// 2000-01-01 12:00 UTC with the fixed 18 s offset.
	got := GMST(630763218)
	if math.Abs(got-4.894961212823059) > 1e-9 {
		t.Fatalf("GMST=%v", got)
	}

	day := GMST(630763218 + 86164.0905)
	if math.Abs(math.Remainder(day-got, 2*math.Pi)) > 1e-4 {
		t.Fatalf("sidereal day drift: %v -> %v", got, day)
	}
}
