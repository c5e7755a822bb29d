// Package storage abstracts the object store that holds archived seed
// fixtures.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored fixture object. Metadata is only populated
// by Put and by stores that keep it alongside the body.
type ObjectInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag,omitempty"`
	LastModified time.Time         `json:"last_modified,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type PutOptions struct {
	ContentType string
	// Metadata is stored as user metadata next to the object, e.g. the
	// table name and row count of an archived fixture.
	Metadata map[string]string
}

type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns every object whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
