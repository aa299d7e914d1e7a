package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrCacheDiscarded is returned with a usable empty cache when the file on
	// disk could not be read.
	ErrCacheDiscarded = errors.New("cache discarded")

	// ErrNotCached is returned for files without a record.
	ErrNotCached = errors.New("file not found in cache")
)

// Key derives a record key from everything the findings of a file depend on
// besides its content.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:8])
}
