package summary

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/gw/strain"
	"github.com/cwbudde/algo-gwpe/gw/waveform"
	"github.com/cwbudde/algo-gwpe/pe/analysis"
	"github.com/cwbudde/algo-gwpe/pe/chain"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

const (
	gps = 1242442967.4
	fs  = 512.0
)

var truth = param.Vector{150, 0.8, 3000, 0.03, 1.1, 0.16, -1.14, 1.0, 0.6}

func sample(lp float64, draw int, v param.Vector) chain.Sample {
	return chain.Sample{Params: v.Slice(), LogPost: lp, Draw: draw}
}

func TestMAPFromSamplesUniqueMaximum(t *testing.T) {
	var samples []chain.Sample
	for i := range 50 {
		v := truth
		v[param.Mass] = float64(100 + i)
		samples = append(samples, sample(-float64((i-17)*(i-17)), i, v))
	}
	samples[3].LogPost = math.NaN()

	est, err := MAPFromSamples(samples)
	if err != nil {
		t.Fatal(err)
	}
	if est.Method != MethodSamples || est.Params[param.Mass] != 117 || est.LogPost != 0 {
		t.Fatalf("estimate=%+v", est)
	}

	samples[40].LogPost = 0
	est, _ = MAPFromSamples(samples)
	if est.Params[param.Mass] != 117 {
		t.Fatal("ties must resolve to the first row")
	}

	if _, err := MAPFromSamples(nil); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("empty: %v", err)
	}
}

func TestCredibleIntervalsPercentiles(t *testing.T) {
	const n = 1000
	rng := rand.New(rand.NewPCG(1, 1))

	samples := make([]chain.Sample, n)
	for i, j := range rng.Perm(n) {
		v := truth
		v[param.Mass] = float64(j + 1)
		samples[i] = sample(0, i, v)
	}

	iv, err := CredibleIntervals(samples, DefaultLevels)
	if err != nil {
		t.Fatal(err)
	}
	if len(iv) != param.Dim || len(iv[param.Mass]) != 2 {
		t.Fatalf("shape %d x %d", len(iv), len(iv[param.Mass]))
	}

	want := []Interval{{0.68, 160, 840}, {0.95, 25, 975}}
	for k, w := range want {
		got := iv[param.Mass][k]
		if got.Level != w.Level || math.Abs(got.Lo-w.Lo) > 1e-9 || math.Abs(got.Hi-w.Hi) > 1e-9 {
			t.Fatalf("level %v: got %+v, want %+v", w.Level, got, w)
		}
	}

	constant := iv[param.Ratio][1]
	if constant.Lo != truth[param.Ratio] || constant.Hi != truth[param.Ratio] {
		t.Fatalf("constant column interval %+v", constant)
	}

	if _, err := CredibleIntervals(samples, []float64{1}); err == nil {
		t.Fatal("level 1 accepted")
	}
	if _, err := CredibleIntervals(nil, DefaultLevels); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("empty: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	c, err := chain.New(4, param.Dim)
	if err != nil {
		t.Fatal(err)
	}
	for it := range 21 {
		s := chain.Step{Iteration: it}
		for w := range 4 {
			v := truth
			v[param.Mass] += float64(it + w)
			s.Positions = append(s.Positions, v.Slice())
			s.LogProb = append(s.LogProb, float64(it-w))
			s.Accepted = append(s.Accepted, true)
		}
		if err := c.Append(s); err != nil {
			t.Fatal(err)
		}
	}

	est, samples, err := Summarize(c, 5, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != (21-5)/2*4 {
		t.Fatalf("retained %d", len(samples))
	}
	if est.LogPost != 20 || est.Params[param.Mass] != truth[param.Mass]+20 {
		t.Fatalf("estimate %+v", est)
	}
	if _, ok := est.Interval(param.Mass, 0.95); !ok {
		t.Fatal("default levels not attached")
	}
	if _, ok := est.Interval(param.Mass, 0.5); ok {
		t.Fatal("unexpected level")
	}
}

func TestMAPByOptimizationQuadratic(t *testing.T) {
	scale := truth
	for i := range scale {
		scale[i] = math.Max(math.Abs(scale[i]), 0.1) * 0.05
	}
	logPost := func(v param.Vector) float64 {
		var s float64
		for i := range v {
			d := (v[i] - truth[i]) / scale[i]
			s += d * d
		}
		return -0.5 * s
	}

	start := truth
	for i := range start {
		start[i] += 0.5 * scale[i]
	}

	est, err := MAPByOptimization(logPost, start)
	if err != nil {
		t.Fatal(err)
	}
	if est.Method != MethodOptimization {
		t.Fatalf("method=%q", est.Method)
	}
	for i := range truth {
		if math.Abs(est.Params[i]-truth[i]) > 0.02*scale[i] {
			t.Fatalf("%s: got %v, want %v", param.Names[i], est.Params[i], truth[i])
		}
	}
	if est.LogPost > 0 || est.LogPost < -1e-3 {
		t.Fatalf("log posterior %v", est.LogPost)
	}

	outside := func(param.Vector) float64 { return math.Inf(-1) }
	if _, err := MAPByOptimization(outside, start); err == nil {
		t.Fatal("start outside support accepted")
	}
}

// injected returns a noise-free context whose data is the template of truth
// and the template itself.
func injected(t *testing.T) (*analysis.Context, detector.Set[series.TimeSeries]) {
	t.Helper()

	gen := waveform.NewNewtonian()
	frame := waveform.Frame{ReferenceTime: gps, Dt: 1 / fs, Duration: 4, StartTime: gps - 2, FLower: 10}
	data, err := gen.Generate(truth, frame)
	if err != nil {
		t.Fatal(err)
	}

	freqs := spectrum.BinFrequencies(int(4*fs), fs)
	var psd detector.Set[series.Spectrum]
	for _, d := range detector.All {
		s := series.Spectrum{Df: freqs[1], Data: make([]float64, len(freqs))}
		for k, f := range freqs {
			s.Data[k] = strain.DesignPSD(f)
		}
		psd[d] = s
	}

	cfg := analysis.DefaultConfig(gps)
	cfg.Bandpass = nil
	ac, err := analysis.New(data, psd, cfg)
	if err != nil {
		t.Fatal(err)
	}

	tmpl, err := gen.Generate(truth, ac.Frame())
	if err != nil {
		t.Fatal(err)
	}
	return ac, tmpl
}

func TestSNROfExactTemplate(t *testing.T) {
	ac, tmpl := injected(t)

	for _, d := range detector.All {
		got, err := SNR(ac, tmpl[d], d)
		if err != nil {
			t.Fatalf("%s: %v", d, err)
		}

		hh, err := ac.Engine().Inner(tmpl[d], tmpl[d], ac.PSD(d))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got.Sigma-math.Sqrt(hh)) > 1e-9*got.Sigma {
			t.Fatalf("%s: sigma=%v, want %v", d, got.Sigma, math.Sqrt(hh))
		}
		if math.Abs(got.Peak-got.Sigma) > 1e-6*got.Sigma {
			t.Fatalf("%s: peak=%v, want sigma %v", d, got.Peak, got.Sigma)
		}

		wantTime := tmpl[d].T0 + float64(tmpl[d].ArgMax())*tmpl[d].Dt
		if math.Abs(got.PeakTime-wantTime) > tmpl[d].Dt/2 {
			t.Fatalf("%s: peak at %v, want %v", d, got.PeakTime, wantTime)
		}
		if got.Series.Len() != tmpl[d].Len() || got.Detector != d {
			t.Fatalf("%s: series %d samples", d, got.Series.Len())
		}
	}
}

func TestSNRMaximizesOverPhase(t *testing.T) {
	ac, tmpl := injected(t)
	d := detector.H1

	// The flipped template is the injected one at a coalescence phase offset
	// of pi; Re z would peak at -sigma.
	got, err := SNR(ac, tmpl[d].Scale(-1), d)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.Peak-got.Sigma) > 1e-6*got.Sigma {
		t.Fatalf("peak=%v, want sigma %v", got.Peak, got.Sigma)
	}
	for i, v := range got.Series.Data {
		if v < 0 {
			t.Fatalf("snr[%d]=%v is negative", i, v)
		}
	}
}

func TestSNRRejectsForeignGrid(t *testing.T) {
	ac, tmpl := injected(t)
	shifted := tmpl[detector.H1]
	shifted.T0 += 1

	if _, err := SNR(ac, shifted, detector.H1); !errors.Is(err, series.ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestResidualOfExactTemplateVanishes(t *testing.T) {
	ac, tmpl := injected(t)

	res, err := Residual(ac, tmpl[detector.L1], detector.L1)
	if err != nil {
		t.Fatal(err)
	}
	if res.MaxAbs() != 0 {
		t.Fatalf("residual max %v", res.MaxAbs())
	}

	data, model, err := Whitened(ac, tmpl[detector.L1], detector.L1)
	if err != nil {
		t.Fatal(err)
	}
	if data.MaxAbs() == 0 {
		t.Fatal("whitened data is empty")
	}
	diff, err := data.Subtract(model)
	if err != nil {
		t.Fatal(err)
	}
	if diff.MaxAbs() != 0 {
		t.Fatalf("model differs from data by %v", diff.MaxAbs())
	}
}

func TestDiagnoseExactTemplate(t *testing.T) {
	ac, tmpl := injected(t)

	for _, d := range detector.All {
		diag, err := Diagnose(ac, tmpl[d], d)
		if err != nil {
			t.Fatalf("%s: %v", d, err)
		}
		if diag.Detector != d || diag.SNR.Detector != d {
			t.Fatalf("%s: diagnostic labelled %s", d, diag.Detector)
		}
		if diag.Residual.RMS != 0 || diag.ResidualSpectrum.Energy != 0 || diag.ResidualSpectrum.Flatness != 0 {
			t.Fatalf("%s: residual not empty: %+v %+v", d, diag.Residual, diag.ResidualSpectrum)
		}
		if !(diag.Data.RMS > 0) || diag.Data.Length != ac.Strain(d).Len() {
			t.Fatalf("%s: data stats %+v", d, diag.Data)
		}
		low, _ := ac.WhiteningBand()
		if c := diag.Template.Centroid; !(c > low && c < fs/2) {
			t.Fatalf("%s: template centroid %v outside band", d, c)
		}
		if diag.Template.PeakFrequency < low {
			t.Fatalf("%s: template peak %v below %v", d, diag.Template.PeakFrequency, low)
		}
	}
}

func TestDiagnoseRejectsForeignGrid(t *testing.T) {
	ac, tmpl := injected(t)
	h := tmpl[detector.L1]
	h.Dt *= 2

	if _, err := Diagnose(ac, h, detector.L1); !errors.Is(err, series.ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}
