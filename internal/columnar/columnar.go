// Package columnar reads and writes typed parquet tables.
package columnar

import (
	"bytes"
	"fmt"
	"io"
	"os"

	parquet "github.com/parquet-go/parquet-go"
)

const batchSize = 1024

// Codec selects the column compression.
type Codec string

const (
	CodecZstd   Codec = "zstd"
	CodecSnappy Codec = "snappy"
	CodecGzip   Codec = "gzip"
	CodecNone   Codec = "none"
)

func (c Codec) option() parquet.WriterOption {
	switch c {
	case CodecSnappy:
		return parquet.Compression(&parquet.Snappy)
	case CodecGzip:
		return parquet.Compression(&parquet.Gzip)
	case CodecNone:
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}

// Write encodes rows as a parquet table into w.
func Write[T any](w io.Writer, rows []T, codec Codec) error {
	pw := parquet.NewGenericWriter[T](w, codec.option())
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if _, err := pw.Write(rows[start:end]); err != nil {
			_ = pw.Close()
			return fmt.Errorf("columnar: write rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("columnar: close writer: %w", err)
	}
	return nil
}

// Encode returns rows as an in-memory parquet table.
func Encode[T any](rows []T, codec Codec) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, rows, codec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes rows to path, replacing any existing file.
func WriteFile[T any](path string, rows []T, codec Codec) error {
	data, err := Encode(rows, codec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("columnar: %w", err)
	}
	return nil
}

// Read decodes every row of a parquet table.
func Read[T any](ra io.ReaderAt) ([]T, error) {
	gr := parquet.NewGenericReader[T](ra)
	defer gr.Close()

	out := make([]T, 0, gr.NumRows())
	batch := make([]T, batchSize)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("columnar: read rows: %w", err)
		}
	}
	return out, nil
}

// Decode reads rows from an in-memory table.
func Decode[T any](data []byte) ([]T, error) {
	return Read[T](bytes.NewReader(data))
}

// ReadFile reads every row of the table at path.
func ReadFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("columnar: %w", err)
	}
	defer f.Close()

	return Read[T](f)
}
