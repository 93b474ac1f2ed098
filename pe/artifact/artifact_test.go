package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-gwpe/internal/columnar"
	"github.com/cwbudde/algo-gwpe/pe/chain"
	"github.com/cwbudde/algo-gwpe/pe/param"
	"github.com/cwbudde/algo-gwpe/pe/summary"
)

var truth = param.Vector{150, 0.8, 3000, 0.03, 1.1, 0.16, -1.14, 1.0, 0.6}

func TestSamplesRoundTrip(t *testing.T) {
	var samples []chain.Sample
	for i := range 3000 {
		v := truth
		v[param.Mass] += float64(i) / 100
		samples = append(samples, chain.Sample{Params: v.Slice(), LogPost: -float64(i), Chain: i % 24, Draw: i / 24})
	}

	for _, codec := range []columnar.Codec{columnar.CodecZstd, columnar.CodecSnappy} {
		path := filepath.Join(t.TempDir(), SamplesFile)
		require.NoError(t, WriteSamples(path, samples, WithCodec(codec)))

		got, err := ReadSamples(path)
		require.NoError(t, err)
		assert.Equal(t, samples, got)
	}
}

func TestWriteSamplesRejectsWrongDimension(t *testing.T) {
	err := WriteSamples(filepath.Join(t.TempDir(), "x.parquet"), []chain.Sample{{Params: []float64{1}}})
	assert.Error(t, err)
}

func TestEstimateRoundTrip(t *testing.T) {
	est := summary.Estimate{Method: summary.MethodSamples, Params: truth, LogPost: 12.5}
	for i := range est.Intervals {
		est.Intervals[i] = []summary.Interval{
			{Level: OneSigma, Lo: truth[i] - 1, Hi: truth[i] + 1},
			{Level: TwoSigma, Lo: truth[i] - 2, Hi: truth[i] + 2},
		}
	}
	est.Intervals[param.Polarization] = est.Intervals[param.Polarization][:1]

	path := filepath.Join(t.TempDir(), EstimateFile)
	require.NoError(t, WriteEstimate(path, est))

	rows, err := columnar.ReadFile[EstimateRow](path)
	require.NoError(t, err)
	require.Len(t, rows, param.Dim)
	assert.Equal(t, "mass", rows[0].Parameter)
	assert.Equal(t, "samples", rows[0].Method)
	assert.True(t, math.IsNaN(rows[param.Polarization].Lo2Sigma))

	got, err := ReadEstimate(path)
	require.NoError(t, err)
	assert.Equal(t, est, got)
}

func TestReadEstimateRequiresEveryParameter(t *testing.T) {
	rows := EstimateRows(summary.Estimate{Params: truth})

	path := filepath.Join(t.TempDir(), "short.parquet")
	require.NoError(t, columnar.WriteFile(path, rows[:8], columnar.CodecNone))
	_, err := ReadEstimate(path)
	assert.ErrorContains(t, err, "pol")

	dup := append(rows[:8:8], rows[0])
	require.NoError(t, columnar.WriteFile(path, dup, columnar.CodecNone))
	_, err = ReadEstimate(path)
	assert.ErrorContains(t, err, "duplicate")
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestS3Client(rt http.RoundTripper) *s3.Client {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		HTTPClient:  &http.Client{Transport: rt},
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://s3.test")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
}

func ok() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

func TestPublisherUploadsUnderPrefix(t *testing.T) {
	type put struct {
		path, contentType string
		body              []byte
	}
	var puts []put

	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPut {
			return nil, fmt.Errorf("unexpected method %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		puts = append(puts, put{path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: body})
		return ok(), nil
	})

	dir := t.TempDir()
	samplesPath := filepath.Join(dir, SamplesFile)
	require.NoError(t, WriteSamples(samplesPath, []chain.Sample{{Params: truth.Slice(), LogPost: 1}}))
	estPath := filepath.Join(dir, EstimateFile)
	require.NoError(t, WriteEstimate(estPath, summary.Estimate{Method: summary.MethodOptimization, Params: truth}))

	p, err := NewPublisher(newTestS3Client(rt), "gw-results", "/GW190521/run1/")
	require.NoError(t, err)

	keys, err := p.PublishFiles(context.Background(), samplesPath, estPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"GW190521/run1/" + SamplesFile, "GW190521/run1/" + EstimateFile}, keys)

	require.Len(t, puts, 2)
	assert.Equal(t, "/gw-results/GW190521/run1/"+SamplesFile, puts[0].path)
	assert.Equal(t, ParquetContentType, puts[0].contentType)
	assert.True(t, bytes.Contains(puts[0].body, []byte("PAR1")), "body should carry the parquet magic")
}

func TestPublisherErrors(t *testing.T) {
	_, err := NewPublisher(nil, "b", "")
	assert.ErrorIs(t, err, ErrPublish)
	_, err = NewPublisher(newTestS3Client(nil), "", "")
	assert.ErrorIs(t, err, ErrPublish)

	rt := roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Status:     "403 Forbidden",
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`<Error><Code>AccessDenied</Code></Error>`)),
		}, nil
	})
	p, err := NewPublisher(newTestS3Client(rt), "b", "")
	require.NoError(t, err)
	assert.Equal(t, "x.parquet", p.Key("x.parquet"))

	_, err = p.Publish(context.Background(), "x.parquet", []byte("data"), ParquetContentType)
	assert.ErrorIs(t, err, ErrPublish)

	_, err = p.PublishFiles(context.Background(), filepath.Join(t.TempDir(), "missing.parquet"))
	assert.True(t, errors.Is(err, ErrPublish))
}
