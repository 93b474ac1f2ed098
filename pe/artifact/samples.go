package artifact

import (
	"fmt"

	"github.com/cwbudde/algo-gwpe/internal/columnar"
	"github.com/cwbudde/algo-gwpe/pe/chain"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

// Default artifact file names.
const (
	SamplesFile  = "posterior_samples.parquet"
	EstimateFile = "map_estimate.parquet"
)

// Option configures table writers.
type Option func(*options)

type options struct {
	codec columnar.Codec
}

// WithCodec selects the parquet compression codec.
func WithCodec(c columnar.Codec) Option {
	return func(o *options) { o.codec = c }
}

func apply(opts []Option) options {
	o := options{codec: columnar.CodecZstd}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// SampleRow is one flattened posterior draw. Column names follow
// [param.Names].
type SampleRow struct {
	Mass           float64 `parquet:"mass"`
	Ratio          float64 `parquet:"ratio"`
	Distance       float64 `parquet:"distance"`
	TimeShift      float64 `parquet:"time_shift"`
	Phase          float64 `parquet:"phase"`
	RightAscension float64 `parquet:"ra"`
	Declination    float64 `parquet:"dec"`
	Inclination    float64 `parquet:"incl"`
	Polarization   float64 `parquet:"pol"`
	LogPosterior   float64 `parquet:"log_posterior"`
	Chain          int64   `parquet:"chain"`
	Draw           int64   `parquet:"draw"`
}

func sampleRow(s chain.Sample) (SampleRow, error) {
	v, err := s.Vector()
	if err != nil {
		return SampleRow{}, err
	}
	return SampleRow{
		Mass:           v[param.Mass],
		Ratio:          v[param.Ratio],
		Distance:       v[param.Distance],
		TimeShift:      v[param.TimeShift],
		Phase:          v[param.Phase],
		RightAscension: v[param.RightAscension],
		Declination:    v[param.Declination],
		Inclination:    v[param.Inclination],
		Polarization:   v[param.Polarization],
		LogPosterior:   s.LogPost,
		Chain:          int64(s.Chain),
		Draw:           int64(s.Draw),
	}, nil
}

// Vector returns the parameters of r.
func (r SampleRow) Vector() param.Vector {
	return param.Vector{
		r.Mass, r.Ratio, r.Distance, r.TimeShift, r.Phase,
		r.RightAscension, r.Declination, r.Inclination, r.Polarization,
	}
}

// Sample converts r back to a chain sample.
func (r SampleRow) Sample() chain.Sample {
	return chain.Sample{
		Params:  r.Vector().Slice(),
		LogPost: r.LogPosterior,
		Chain:   int(r.Chain),
		Draw:    int(r.Draw),
	}
}

// WriteSamples writes samples to a parquet file at path.
func WriteSamples(path string, samples []chain.Sample, opts ...Option) error {
	rows := make([]SampleRow, len(samples))
	for i, s := range samples {
		r, err := sampleRow(s)
		if err != nil {
			return fmt.Errorf("artifact: sample %d: %w", i, err)
		}
		rows[i] = r
	}
	return columnar.WriteFile(path, rows, apply(opts).codec)
}

// ReadSamples reads a sample table written by [WriteSamples].
func ReadSamples(path string) ([]chain.Sample, error) {
	rows, err := columnar.ReadFile[SampleRow](path)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	out := make([]chain.Sample, len(rows))
	for i, r := range rows {
		out[i] = r.Sample()
	}
	return out, nil
}
