package detect

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"strings"
)

// DefaultMaxDecodedBytes caps the decompressed size of a gzip upload.
const DefaultMaxDecodedBytes int64 = 128 << 20

// ErrDecodedTooLarge is returned by DecodeLimit when a gzip stream expands
// beyond the limit. The raw bytes are used instead.
var ErrDecodedTooLarge = errors.New("decompressed input exceeds limit")

// Decode converts uploaded bytes to text on a best-effort basis.
// Gzip streams (including BGZF) are decompressed; if decompression fails the
// raw bytes are used. Invalid UTF-8 is replaced, so no input is rejected.
func Decode(data []byte) string {
	text, _ := DecodeLimit(data, DefaultMaxDecodedBytes)
	return text
}

// DecodeLimit is Decode with a ceiling on decompressed size. A limit <= 0
// means DefaultMaxDecodedBytes. The returned text is always usable; the
// error only reports that the ceiling was hit.
func DecodeLimit(data []byte, limit int64) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxDecodedBytes
	}
	if isGzip(data) {
		text, err := gunzip(data, limit)
		if err == nil {
			return strings.ToValidUTF8(text, "\uFFFD"), nil
		}
		if errors.Is(err, ErrDecodedTooLarge) {
			return strings.ToValidUTF8(string(data), "\uFFFD"), err
		}
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// isGzip checks for the gzip magic number (0x1f, 0x8b).
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func gunzip(data []byte, limit int64) (string, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(out)) > limit {
		return "", ErrDecodedTooLarge
	}
	return string(out), nil
}
