// Package storage provides read access to an S3-compatible mirror of the document files.
// The mirror is optional; callers fall back to a document's stored download URL without it.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when the mirror holds no object under the key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo contains basic information about a mirrored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is a read-only view of the mirror bucket.
type Storage interface {
	// Stat returns an object's info, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectKey is the mirror key for a document file: <prefix>/<folderID>/<fileID>.
// Slashes inside the refs are kept out of the key so a ref cannot climb out of the prefix.
func ObjectKey(prefix, folderID, fileID string) string {
	clean := func(s string) string {
		s = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(s))
		if s == "" || s == "." || s == ".." {
			return "_"
		}
		return s
	}
	return path.Join(strings.Trim(prefix, "/"), clean(folderID), clean(fileID))
}
