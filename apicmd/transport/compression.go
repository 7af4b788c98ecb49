package transport

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Compression encoding constants
const (
	encodingGzip    = "gzip"
	encodingDeflate = "deflate"
	encodingZstd    = "zstd"
)

// NormalizeEncoding normalizes a Content-Encoding header value.
// Returns the normalized encoding and whether it's a single supported
// encoding. Multiple encodings (e.g., "gzip, br") return ("", false) since
// we can't partially decode.
func NormalizeEncoding(encoding string) (string, bool) {
	encoding = strings.TrimSpace(strings.ToLower(encoding))

	if strings.Contains(encoding, ",") {
		return "", false
	}

	switch encoding {
	case encodingGzip, "x-gzip":
		return encodingGzip, true
	case encodingDeflate:
		return encodingDeflate, true
	case encodingZstd:
		return encodingZstd, true
	default:
		return encoding, false
	}
}

// Decompress decompresses a response body based on Content-Encoding.
// Returns (decompressed data, wasCompressed). If wasCompressed is true but
// returned data is nil, decompression failed. Unknown encodings return the
// original data unchanged so the body is still inspectable.
//
// Handles:
// - Case variations: "GZIP", "Gzip" normalized to "gzip"
// - x-gzip alias: treated as gzip
// - deflate: tries raw DEFLATE first, then zlib-wrapped
// - zstd
// - Multiple encodings (e.g., "gzip, br"): skipped (can't partially decode)
func Decompress(data []byte, encoding string) ([]byte, bool) {
	normalized, supported := NormalizeEncoding(encoding)
	if !supported {
		return data, false
	}

	switch normalized {
	case encodingGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, true
		}
		defer func() { _ = gr.Close() }()
		decompressed, err := io.ReadAll(gr)
		if err != nil {
			return nil, true
		}
		return decompressed, true

	case encodingDeflate:
		// deflate can be raw DEFLATE or zlib-wrapped - try raw first
		if decompressed, err := decompressRawDeflate(data); err == nil {
			return decompressed, true
		}
		if decompressed, err := decompressZlib(data); err == nil {
			return decompressed, true
		}
		return nil, true

	case encodingZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, true
		}
		defer zr.Close()
		decompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, true
		}
		return decompressed, true

	default:
		return data, false
	}
}

// decompressRawDeflate attempts raw DEFLATE decompression.
func decompressRawDeflate(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer func() { _ = fr.Close() }()
	return io.ReadAll(fr)
}

// decompressZlib attempts zlib-wrapped DEFLATE decompression.
func decompressZlib(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()
	return io.ReadAll(zr)
}
