package contents

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// compressionExtensions is the order in which index file variants are
// tried, both in the cache and remotely. The empty string is the
// uncompressed fallback.
var compressionExtensions = []string{".gz", ".xz", ".zst", ".lz4", ""}

// decompressor wraps r according to the compression extension of name.
// Unknown extensions are treated as plain text.
func decompressor(name string, r io.Reader) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream %s: %w", name, err)
		}
		return gz, nil
	case strings.HasSuffix(name, ".xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xz stream %s: %w", name, err)
		}
		return xzr, nil
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream %s: %w", name, err)
		}
		return zr.IOReadCloser(), nil
	case strings.HasSuffix(name, ".lz4"):
		return lz4.NewReader(r), nil
	default:
		return r, nil
	}
}
