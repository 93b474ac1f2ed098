package strain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/internal/columnar"
)

// ErrIrregular is returned for strain tables whose samples are not evenly spaced.
var ErrIrregular = errors.New("strain: irregular sampling")

// Provider loads the strain recorded by one detector.
type Provider interface {
	LoadStrain(ctx context.Context, d detector.Detector) (series.TimeSeries, error)
}

// PSDProvider is implemented by providers that know the noise spectrum of
// a detector, bypassing estimation from the strain.
type PSDProvider interface {
	LoadPSD(ctx context.Context, d detector.Detector) (series.Spectrum, error)
}

// LoadAll loads every detector from p.
func LoadAll(ctx context.Context, p Provider) (detector.Set[series.TimeSeries], error) {
	var out detector.Set[series.TimeSeries]
	for _, d := range detector.All {
		ts, err := p.LoadStrain(ctx, d)
		if err != nil {
			return out, fmt.Errorf("strain: load %s: %w", d, err)
		}
		out[d] = ts
	}
	return out, nil
}

// Row is one strain sample as stored on disk.
type Row struct {
	Time   float64 `parquet:"time"`
	Strain float64 `parquet:"strain"`
}

// ParquetProvider reads <Dir>/<det>_strain.parquet.
type ParquetProvider struct {
	Dir string
}

// Path returns the table path for d.
func (p ParquetProvider) Path(d detector.Detector) string {
	return FilePath(p.Dir, d)
}

// FilePath returns the strain table path for d inside dir.
func FilePath(dir string, d detector.Detector) string {
	return filepath.Join(dir, d.String()+"_strain.parquet")
}

// LoadStrain implements [Provider].
func (p ParquetProvider) LoadStrain(ctx context.Context, d detector.Detector) (series.TimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return series.TimeSeries{}, err
	}

	rows, err := columnar.ReadFile[Row](p.Path(d))
	if err != nil {
		return series.TimeSeries{}, err
	}
	return fromRows(rows)
}

func fromRows(rows []Row) (series.TimeSeries, error) {
	if len(rows) < 2 {
		return series.TimeSeries{}, fmt.Errorf("%w: %d rows", ErrIrregular, len(rows))
	}

	t0 := rows[0].Time
	dt := (rows[len(rows)-1].Time - t0) / float64(len(rows)-1)
	if !(dt > 0) {
		return series.TimeSeries{}, fmt.Errorf("%w: dt=%g", ErrIrregular, dt)
	}

	data := make([]float64, len(rows))
	for i, r := range rows {
		if diff := r.Time - (t0 + float64(i)*dt); diff > dt/2 || diff < -dt/2 {
			return series.TimeSeries{}, fmt.Errorf("%w: sample %d at %f", ErrIrregular, i, r.Time)
		}
		data[i] = r.Strain
	}
	return series.TimeSeries{T0: t0, Dt: dt, Data: data}, nil
}

// WriteParquet writes one strain table per detector into dir, creating it
// if needed.
func WriteParquet(dir string, data detector.Set[series.TimeSeries]) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("strain: %w", err)
	}

	for _, d := range detector.All {
		ts := data[d]
		rows := make([]Row, ts.Len())
		for i, v := range ts.Data {
			rows[i] = Row{Time: ts.T0 + float64(i)*ts.Dt, Strain: v}
		}
		if err := columnar.WriteFile(FilePath(dir, d), rows, columnar.CodecZstd); err != nil {
			return fmt.Errorf("strain: write %s: %w", d, err)
		}
	}
	return nil
}
