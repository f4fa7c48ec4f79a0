package httplog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// maxDecompressedSize bounds how much a compressed body may expand to.
const maxDecompressedSize = 64 << 20

// CompressionType represents a content coding.
type CompressionType int

const (
	// CompressionNone is the identity coding.
	CompressionNone CompressionType = iota
	// CompressionGzip is gzip or x-gzip.
	CompressionGzip
	// CompressionDeflate is deflate, zlib-wrapped or raw.
	CompressionDeflate
	// CompressionBrotli is br.
	CompressionBrotli
	// CompressionZstd is zstd.
	CompressionZstd
	// CompressionUnknown is any coding this package cannot undo.
	CompressionUnknown
)

// Static error definitions for better error handling.
var (
	// ErrUnknownCompression indicates a content coding that cannot be undone.
	ErrUnknownCompression = errors.New("unknown compression type")
	// ErrDecompressedTooLarge indicates a body that expands beyond maxDecompressedSize.
	ErrDecompressedTooLarge = errors.New("decompressed body too large")
)

// String returns the string representation of compression type.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionDeflate:
		return "deflate"
	case CompressionBrotli:
		return "br"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// DetectCompressionType maps a single content coding token to its type.
func DetectCompressionType(coding string) CompressionType {
	switch strings.ToLower(strings.TrimSpace(coding)) {
	case "", "identity":
		return CompressionNone
	case "gzip", "x-gzip":
		return CompressionGzip
	case "deflate":
		return CompressionDeflate
	case "br", "brotli":
		return CompressionBrotli
	case "zstd":
		return CompressionZstd
	default:
		return CompressionUnknown
	}
}

// Decompress undoes every coding listed in contentEncoding. Codings are
// listed in the order they were applied, so they are undone last first.
func Decompress(body []byte, contentEncoding string) ([]byte, error) {
	codings := strings.Split(contentEncoding, ",")

	for i := len(codings) - 1; i >= 0; i-- {
		if len(body) == 0 {
			return body, nil
		}

		var err error

		switch DetectCompressionType(codings[i]) {
		case CompressionNone:
			continue
		case CompressionGzip:
			body, err = decompressGzip(body)
		case CompressionDeflate:
			body, err = decompressDeflate(body)
		case CompressionBrotli:
			body, err = readLimited(brotli.NewReader(bytes.NewReader(body)))
		case CompressionZstd:
			body, err = decompressZstd(body)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownCompression, strings.TrimSpace(codings[i]))
		}

		if err != nil {
			return nil, err
		}
	}

	return body, nil
}

func decompressGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}

	defer reader.Close() //nolint:errcheck // Closing a reader over memory cannot fail meaningfully.

	return readLimited(reader)
}

// decompressDeflate accepts both the zlib-wrapped form mandated by HTTP and
// the raw deflate stream some servers send instead.
func decompressDeflate(data []byte) ([]byte, error) {
	if reader, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
		defer reader.Close() //nolint:errcheck // Closing a reader over memory cannot fail meaningfully.

		if result, readErr := readLimited(reader); readErr == nil {
			return result, nil
		}
	}

	reader := flate.NewReader(bytes.NewReader(data))
	defer reader.Close() //nolint:errcheck // Closing a reader over memory cannot fail meaningfully.

	return readLimited(reader)
}

func decompressZstd(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}

	defer decoder.Close()

	return readLimited(decoder)
}

func readLimited(r io.Reader) ([]byte, error) {
	result, err := io.ReadAll(io.LimitReader(r, maxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}

	if len(result) > maxDecompressedSize {
		return nil, ErrDecompressedTooLarge
	}

	return result, nil
}
