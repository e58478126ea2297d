package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// MaxUploadSize is the ceiling enforced before any bytes are transferred.
const MaxUploadSize = 5 << 20 // 5 MiB

var (
	ErrUploadTooLarge = errors.New("upload exceeds the maximum allowed size")
	ErrEmptyKey       = errors.New("object key must not be empty")
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader abstracts the blob store used for payment proofs, organizer
// QR codes and team photos.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, size int64, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string

	// ListLatest returns the most recently uploaded key under the prefix,
	// or "" when nothing has been uploaded yet.
	ListLatest(ctx context.Context, prefix string) (string, error)
}

// ObjectKey builds a per-identity key so uploads from different owners can
// never collide: {kind}/{ownerID}/{random}.
func ObjectKey(kind string, ownerID int) string {
	return fmt.Sprintf("%s/%d/%s", kind, ownerID, uuid.NewString())
}

// OwnerPrefix is the namespace all of an owner's objects of one kind live
// under, usable with ListLatest.
func OwnerPrefix(kind string, ownerID int) string {
	return fmt.Sprintf("%s/%d/", kind, ownerID)
}
