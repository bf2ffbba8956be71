// Package storage abstracts object storage for generated assets and
// client uploads.
package storage

import (
	"context"
	"strings"
	"time"
)

// ObjectStore is the persistence surface for media assets. Put returns a
// stable public URL for the stored object.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PublicURL(key string) string
}

// KeyWithinPrefix reports whether key sanitizes cleanly and sits under the
// given prefix. Upload confirmation uses it to reject keys pointing outside
// the client upload area.
func KeyWithinPrefix(key, prefix string) bool {
	cleaned, err := sanitizeKey(key)
	if err != nil {
		return false
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(cleaned, prefix+"/")
}
