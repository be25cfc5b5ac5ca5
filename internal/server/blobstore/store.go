// Package blobstore stores photo binaries in an S3-compatible bucket and
// addresses them by durable public URLs.
package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrForeignURL is returned when a URL does not point into this store.
var ErrForeignURL = errors.New("url does not belong to the blob store")

// ProgressFunc observes an upload. sent counts bytes handed to the
// transport so far; total is the declared size, or -1 when unknown.
type ProgressFunc func(sent, total int64)

// Object describes an uploaded blob.
type Object struct {
	Key  string
	URL  string
	Size int64
}

// Upload is one photo to store. Body must be seekable so the SDK can
// compute payload checksums over plain HTTP endpoints.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
	Progress    ProgressFunc
}

// Store is the Blob Store.
type Store interface {
	Put(ctx context.Context, up Upload) (*Object, error)
	Delete(ctx context.Context, url string) error
}
