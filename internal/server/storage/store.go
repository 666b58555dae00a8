// Package storage abstracts where uploaded photos live. The disk backend
// mirrors the classic uploads-directory layout; the s3 backend keeps photos
// in an S3-compatible bucket and serves them through presigned URLs.
package storage

import (
	"context"
	"io"
)

// PhotoStore persists photo blobs under opaque filenames. Listings only ever
// reference these names; nothing validates that a referenced photo exists.
type PhotoStore interface {
	// Save stores the blob under name. It is an error if name already exists.
	Save(ctx context.Context, name string, contentType string, r io.Reader) error

	// URL returns the address a browser can fetch the photo from.
	URL(ctx context.Context, name string) (string, error)
}
