// Package config loads the YAML run configuration of gwpe.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/strain"
	"github.com/cwbudde/algo-gwpe/pe/analysis"
	"github.com/cwbudde/algo-gwpe/pe/artifact"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

// ErrInvalid reports a configuration that cannot drive a run.
var ErrInvalid = errors.New("config: invalid")

// GW190521 is the GPS time of the reference event.
const GW190521 = 1242442967.4

// Config is the full run configuration.
type Config struct {
	Event      EventConfig      `yaml:"event"`
	Data       DataConfig       `yaml:"data"`
	Likelihood LikelihoodConfig `yaml:"likelihood"`
	Sampler    SamplerConfig    `yaml:"sampler"`
	Store      StoreConfig      `yaml:"store"`
	Summary    SummaryConfig    `yaml:"summary"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type EventConfig struct {
	GPS       float64 `yaml:"gps"`
	HalfWidth float64 `yaml:"half_width"` // seconds either side of GPS
}

type DataConfig struct {
	Dir       string           `yaml:"dir"`
	Bandpass  *analysis.Band   `yaml:"bandpass"` // null disables the bandpass
	PSD       strain.PSDConfig `yaml:"psd"`
	Synthetic SyntheticConfig  `yaml:"synthetic"`
}

// SyntheticConfig drives gwpe inject.
type SyntheticConfig struct {
	Duration   float64            `yaml:"duration"` // centred on the event
	SampleRate float64            `yaml:"sample_rate"`
	Seed       uint64             `yaml:"seed"`
	NoiseScale map[string]float64 `yaml:"noise_scale"` // detector -> ASD factor
	Inject     bool               `yaml:"inject"`
	Params     map[string]float64 `yaml:"params,omitempty"` // injected source; missing names take the best fit
}

type LikelihoodConfig struct {
	LowerCutoff float64  `yaml:"lower_cutoff"`
	Taper       float64  `yaml:"taper"`
	Detectors   []string `yaml:"detectors"`
}

type SamplerConfig struct {
	Walkers        int                    `yaml:"walkers"`
	Iterations     int                    `yaml:"iterations"`
	Seed           uint64                 `yaml:"seed"`
	Workers        int                    `yaml:"workers"` // 0 uses every logical CPU
	StretchScale   float64                `yaml:"stretch_scale"`
	StretchWeight  float64                `yaml:"stretch_weight"`
	DESigma        float64                `yaml:"de_sigma"`
	DEWeight       float64                `yaml:"de_weight"`
	LogEvery       int                    `yaml:"log_every"`
	MaxInitRetries int                    `yaml:"max_init_retries"`
	BestFit        map[string]float64     `yaml:"best_fit"`
	Bounds         map[string]param.Range `yaml:"bounds"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type SummaryConfig struct {
	BurnIn    int       `yaml:"burn_in"`
	Thin      int       `yaml:"thin"`
	Levels    []float64 `yaml:"levels"`
	MAPMethod string    `yaml:"map_method"` // samples or optimize
}

type ArtifactsConfig struct {
	Dir string            `yaml:"dir"`
	S3  artifact.S3Config `yaml:"s3"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultBestFit is the walker initialization centre.
var DefaultBestFit = param.Vector{150, 0.8, 2000, 0.03, 1.1, 0.16, -1.14, 1.0, 0.6}

// Default returns the GW190521 configuration. Burn-in and thinning are
// left neutral; set them after inspecting the traces.
func Default() *Config {
	bounds := param.SamplingBounds()
	bmap := make(map[string]param.Range, param.Dim)
	best := make(map[string]float64, param.Dim)
	for i, name := range param.Names {
		bmap[name] = bounds[i]
		best[name] = DefaultBestFit[i]
	}

	return &Config{
		Event: EventConfig{GPS: GW190521, HalfWidth: 2},
		Data: DataConfig{
			Dir:      "data",
			Bandpass: &analysis.Band{Low: 25, High: 90, Order: 4},
			PSD:      strain.DefaultPSDConfig(),
			Synthetic: SyntheticConfig{
				Duration:   32,
				SampleRate: 2048,
				Seed:       190521,
				NoiseScale: map[string]float64{"H1": 1, "L1": 1, "V1": 4},
				Inject:     true,
			},
		},
		Likelihood: LikelihoodConfig{LowerCutoff: 10, Taper: 0.25, Detectors: []string{"H1", "L1"}},
		Sampler: SamplerConfig{
			Walkers:        24,
			Iterations:     5000,
			Seed:           42,
			StretchScale:   2,
			StretchWeight:  0.8,
			DESigma:        1e-5,
			DEWeight:       0.2,
			LogEvery:       100,
			MaxInitRetries: 10000,
			BestFit:        best,
			Bounds:         bmap,
		},
		Store:     StoreConfig{Path: "chain.db"},
		Summary:   SummaryConfig{BurnIn: 0, Thin: 1, Levels: []float64{0.68, 0.95}, MAPMethod: "samples"},
		Artifacts: ArtifactsConfig{Dir: "artifacts"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies GWPE_* environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalid, path, err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
	}

	switch {
	case !(c.Event.HalfWidth > 0):
		return fail("event.half_width must be > 0")
	case c.Data.Bandpass != nil && !(c.Data.Bandpass.Low > 0 && c.Data.Bandpass.High > c.Data.Bandpass.Low):
		return fail("data.bandpass must satisfy 0 < low < high")
	case !(c.Data.PSD.FFTLength > 0) || c.Data.PSD.Overlap < 0 || c.Data.PSD.Overlap >= c.Data.PSD.FFTLength:
		return fail("data.psd needs fft_length > overlap >= 0")
	case c.Likelihood.LowerCutoff < 0:
		return fail("likelihood.lower_cutoff must be >= 0")
	case c.Likelihood.Taper < 0 || c.Likelihood.Taper > 1:
		return fail("likelihood.taper must lie in [0, 1]")
	case c.Sampler.Walkers < 2*param.Dim:
		return fail("sampler.walkers must be at least %d", 2*param.Dim)
	case c.Sampler.Iterations <= 0:
		return fail("sampler.iterations must be > 0")
	case c.Sampler.StretchWeight < 0 || c.Sampler.DEWeight < 0 || c.Sampler.StretchWeight+c.Sampler.DEWeight == 0:
		return fail("sampler move weights must be non-negative and not both zero")
	case c.Sampler.StretchWeight > 0 && !(c.Sampler.StretchScale > 1):
		return fail("sampler.stretch_scale must be > 1")
	case c.Summary.BurnIn < 0:
		return fail("summary.burn_in must be >= 0")
	case c.Summary.Thin < 1:
		return fail("summary.thin must be >= 1")
	case c.Summary.MAPMethod != "samples" && c.Summary.MAPMethod != "optimize":
		return fail("summary.map_method %q is not samples or optimize", c.Summary.MAPMethod)
	case c.Store.Path == "":
		return fail("store.path is empty")
	}

	for _, l := range c.Summary.Levels {
		if !(l > 0 && l < 1) {
			return fail("summary.levels entry %g outside (0, 1)", l)
		}
	}
	if _, err := c.Detectors(); err != nil {
		return fail("%v", err)
	}
	if _, err := c.SamplingBounds(); err != nil {
		return fail("%v", err)
	}
	if _, err := c.BestFit(); err != nil {
		return fail("%v", err)
	}
	if _, err := c.NoiseScale(); err != nil {
		return fail("%v", err)
	}
	return nil
}

// Detectors returns the detectors included in the likelihood.
func (c *Config) Detectors() ([]detector.Detector, error) {
	ds, err := detector.ParseList(c.Likelihood.Detectors)
	if err != nil {
		return nil, err
	}
	if len(ds) == 0 {
		return nil, errors.New("likelihood.detectors is empty")
	}
	return ds, nil
}

// SamplingBounds merges configured ranges over the reference bounds.
func (c *Config) SamplingBounds() (param.Bounds, error) {
	b := param.SamplingBounds()
	for name, r := range c.Sampler.Bounds {
		i, err := param.Index(name)
		if err != nil {
			return param.Bounds{}, err
		}
		b[i] = r
	}
	return b, b.Validate()
}

// BestFit returns the walker initialization centre, which must lie inside
// the sampling bounds.
func (c *Config) BestFit() (param.Vector, error) {
	v, err := overlay(DefaultBestFit, c.Sampler.BestFit)
	if err != nil {
		return param.Vector{}, err
	}
	b, err := c.SamplingBounds()
	if err != nil {
		return param.Vector{}, err
	}
	if !b.Within(v) {
		return param.Vector{}, fmt.Errorf("sampler.best_fit %v outside sampling bounds", v)
	}
	return v, nil
}

// InjectionParams returns the injected source parameters.
func (c *Config) InjectionParams() (param.Vector, error) {
	best, err := overlay(DefaultBestFit, c.Sampler.BestFit)
	if err != nil {
		return param.Vector{}, err
	}
	return overlay(best, c.Data.Synthetic.Params)
}

// NoiseScale returns the per-detector synthetic noise factor.
func (c *Config) NoiseScale() (detector.Set[float64], error) {
	out := strain.DefaultNoiseScale
	for name, f := range c.Data.Synthetic.NoiseScale {
		d, err := detector.Parse(name)
		if err != nil {
			return out, err
		}
		if f < 0 {
			return out, fmt.Errorf("noise scale of %s is negative", d)
		}
		out.Put(d, f)
	}
	return out, nil
}

// Analysis returns the analysis context settings.
func (c *Config) Analysis() (analysis.Config, error) {
	ds, err := c.Detectors()
	if err != nil {
		return analysis.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg := analysis.DefaultConfig(c.Event.GPS)
	cfg.HalfWidth = c.Event.HalfWidth
	cfg.Bandpass = c.Data.Bandpass
	cfg.PSD = c.Data.PSD
	cfg.LowerCutoff = c.Likelihood.LowerCutoff
	cfg.Taper = c.Likelihood.Taper
	cfg.Included = slices.Clone(ds)
	return cfg, nil
}

func overlay(base param.Vector, values map[string]float64) (param.Vector, error) {
	for name, x := range values {
		i, err := param.Index(name)
		if err != nil {
			return param.Vector{}, err
		}
		base[i] = x
	}
	return base, nil
}
