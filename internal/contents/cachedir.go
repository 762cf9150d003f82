package contents

import (
	"fmt"
	"strings"
)

// CacheFileName derives the cache file name for a source URL: the scheme
// is stripped, path separators become underscores and characters outside
// a safe set are percent-encoded. The compression extension survives so
// the decompressor can still pick the right format.
func CacheFileName(url string) string {
	trimmed := url
	for _, scheme := range []string{"https://", "http://", "ftp://"} {
		if strings.HasPrefix(trimmed, scheme) {
			trimmed = strings.TrimPrefix(trimmed, scheme)
			break
		}
	}

	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r == '/':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_', r == '~':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "%%%02X", r)
		}
	}
	return b.String()
}
