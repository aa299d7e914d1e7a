//go:build !cgo

package kotlinsrc

import (
	"context"
)

// Reader reads Kotlin sources. This stub is used when cgo is not available.
type Reader struct{}

// NewReader creates a new Kotlin reader.
func NewReader() *Reader {
	return &Reader{}
}

// IsAvailable returns whether Kotlin sources can be read in this build.
func IsAvailable() bool {
	return false
}

// ReadFile always fails with ErrUnavailable.
func (r *Reader) ReadFile(ctx context.Context, path string) (*File, error) {
	return nil, ErrUnavailable
}

// ReadSource always fails with ErrUnavailable.
func (r *Reader) ReadSource(ctx context.Context, path string, source []byte) (*File, error) {
	return nil, ErrUnavailable
}
