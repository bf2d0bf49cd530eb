package flux

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrInput is returned when the sample file cannot be used as flux input.
var ErrInput = errors.New("invalid flux sample input")

// SampleSize is the size of one flux sample in bytes.
const SampleSize = 2

// Compression represents the container a sample file is wrapped in
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip             // .gz - gzip stream
	CompressionZstd             // .zst - Zstandard frame
	CompressionLZ4              // .lz4 - LZ4 frame
)

// String returns the string representation of the Compression
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// DetectCompression detects the compression from a filename based on its extension.
// The extension check is case-insensitive.
func DetectCompression(filename string) Compression {
	ext := filepath.Ext(filename)
	if ext == "" {
		return CompressionNone
	}

	switch strings.ToLower(ext[1:]) {
	case "gz":
		return CompressionGzip
	case "zst":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Load reads the whole sample file into memory.
// Compressed files are recognized by extension and decompressed on the fly.
func Load(filename string) ([]uint16, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open samples file: %w", ErrInput, err)
	}
	defer file.Close()

	samples, err := ReadSamples(file, DetectCompression(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return samples, nil
}

// ReadSamples reads all samples from r, unwrapping the given compression first.
func ReadSamples(r io.Reader, compression Compression) ([]uint16, error) {
	var src io.Reader
	switch compression {
	case CompressionNone:
		src = r
	case CompressionGzip:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create gzip reader: %w", ErrInput, err)
		}
		defer gzReader.Close()
		src = gzReader
	case CompressionZstd:
		zstdReader, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create zstd reader: %w", ErrInput, err)
		}
		defer zstdReader.Close()
		src = zstdReader
	case CompressionLZ4:
		src = lz4.NewReader(r)
	default:
		return nil, fmt.Errorf("%w: unsupported compression %d", ErrInput, compression)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read samples (%s): %w", ErrInput, compression, err)
	}
	return Decode(data)
}

// Decode converts raw little-endian bytes into samples.
// The input must hold a whole number of samples.
func Decode(data []byte) ([]uint16, error) {
	if len(data)%SampleSize != 0 {
		return nil, fmt.Errorf("%w: size %d is not a multiple of %d bytes", ErrInput, len(data), SampleSize)
	}

	samples := make([]uint16, len(data)/SampleSize)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(data[i*SampleSize:])
	}
	return samples, nil
}
