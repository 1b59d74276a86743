package dataset

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// Compression identifies how a data file is encoded on disk.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
	LZ4
)

// DetectCompression maps a file extension to its codec.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

type stackedCloser struct {
	io.Reader
	closers []func() error
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens path for reading and decompresses it according to its
// extension. The caller must Close the returned reader.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewLoadError(path, 0, err)
	}
	rc, err := NewReader(f, DetectCompression(path))
	if err != nil {
		_ = f.Close()
		return nil, errors.NewLoadError(path, 0, err)
	}
	return &stackedCloser{Reader: rc, closers: []func() error{rc.Close, f.Close}}, nil
}

// NewReader wraps r with a decoder for c. Closing the result does not
// close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		return zr, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}
