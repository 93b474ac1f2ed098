package waveform

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/internal/testutil"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

const reference = 1242442967.4

func testFrame() Frame {
	return Frame{
		ReferenceTime: reference,
		Dt:            1.0 / 1024,
		Duration:      4,
		StartTime:     reference - 2,
		FLower:        10,
	}
}

func testParams() param.Vector {
	return param.Vector{150, 0.8, 2000, 0.03, 1.1, 0.16, -1.14, 1.0, 0.6}
}

func TestNewtonianGrid(t *testing.T) {
	f := testFrame()
	out, err := NewNewtonian().Generate(testParams(), f)
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range detector.All {
		ts := out[d]
		if ts.Len() != 4096 || ts.Dt != f.Dt || ts.T0 != f.StartTime {
			t.Fatalf("%v: grid t0=%v dt=%v n=%d", d, ts.T0, ts.Dt, ts.Len())
		}
		testutil.RequireFinite(t, ts.Data)
		if ts.MaxAbs() == 0 {
			t.Fatalf("%v: empty template", d)
		}
	}
}

func TestNewtonianPeakNearCoalescence(t *testing.T) {
	f := testFrame()
	p := testParams()
	out, err := NewNewtonian().Generate(p, f)
	if err != nil {
		t.Fatal(err)
	}

	tc := reference + p[param.TimeShift]
	for _, d := range detector.All {
		want := tc + d.TimeDelayFromEarthCenter(p[param.RightAscension], p[param.Declination], tc)
		got := peakTime(out[d])
		if math.Abs(got-want) > 0.05 {
			t.Fatalf("%v: peak at %.4f, coalescence at %.4f", d, got-reference, want-reference)
		}
	}
}

func TestNewtonianDistanceScaling(t *testing.T) {
	f := testFrame()
	near := testParams()
	far := near
	far[param.Distance] *= 2

	a, err := NewNewtonian().Generate(near, f)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewNewtonian().Generate(far, f)
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range detector.All {
		half := a[d].Scale(0.5)
		testutil.RequireSliceNearlyEqual(t, b[d].Data, half.Data, 1e-12*a[d].MaxAbs())
	}
}

func TestNewtonianTimeShiftMovesPeak(t *testing.T) {
	f := testFrame()
	p := testParams()
	q := p
	q[param.TimeShift] += 0.25

	a, err := NewNewtonian().Generate(p, f)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewNewtonian().Generate(q, f)
	if err != nil {
		t.Fatal(err)
	}

	if got := peakTime(b[detector.H1]) - peakTime(a[detector.H1]); math.Abs(got-0.25) > 2*f.Dt {
		t.Fatalf("peak moved by %v, want 0.25", got)
	}
}

func TestNewtonianDeterministic(t *testing.T) {
	g := NewNewtonian()
	a, _ := g.Generate(testParams(), testFrame())
	b, _ := g.Generate(testParams(), testFrame())
	for _, d := range detector.All {
		testutil.RequireSliceNearlyEqual(t, a[d].Data, b[d].Data, 0)
	}
}

func TestNewtonianRejects(t *testing.T) {
	g := NewNewtonian()

	tests := []struct {
		name   string
		mutate func(*param.Vector, *Frame)
	}{
		{"zero mass", func(p *param.Vector, _ *Frame) { p[param.Mass] = 0 }},
		{"ratio above one", func(p *param.Vector, _ *Frame) { p[param.Ratio] = 1.5 }},
		{"negative distance", func(p *param.Vector, _ *Frame) { p[param.Distance] = -1 }},
		{"nan phase", func(p *param.Vector, _ *Frame) { p[param.Phase] = math.NaN() }},
		{"f_lower above isco", func(_ *param.Vector, f *Frame) { f.FLower = 200 }},
		{"zero dt", func(_ *param.Vector, f *Frame) { f.Dt = 0 }},
		{"empty frame", func(_ *param.Vector, f *Frame) { f.Duration = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, f := testParams(), testFrame()
			tc.mutate(&p, &f)
			if _, err := g.Generate(p, f); !errors.Is(err, ErrTemplate) {
				t.Fatalf("expected ErrTemplate, got %v", err)
			}
		})
	}
}

func TestCyclicShiftInteger(t *testing.T) {
	x := testutil.Impulse(16, 3)
	got, err := cyclicShift(x, 5)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, testutil.Impulse(16, 8), 1e-12)

	wrapped, err := cyclicShift(x, -5)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, wrapped, testutil.Impulse(16, 14), 1e-12)
}

func TestFrameOf(t *testing.T) {
	ts := series.TimeSeries{T0: 5, Dt: 0.5, Data: make([]float64, 8)}
	f := FrameOf(ts, 7, 10)
	if f.StartTime != 5 || f.Duration != 4 || f.Samples() != 8 || f.ReferenceTime != 7 {
		t.Fatalf("unexpected frame %+v", f)
	}
}

func peakTime(ts series.TimeSeries) float64 {
	best := 0
	for i, v := range ts.Data {
		if math.Abs(v) > math.Abs(ts.Data[best]) {
			best = i
		}
	}
	return ts.T0 + float64(best)*ts.Dt
}
