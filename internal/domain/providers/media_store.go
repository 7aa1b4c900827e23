package providers

import (
	"context"

	"github.com/gharbazaar/backend/internal/domain/entities"
)

// MediaStore defines the interface to the external blob storage collaborator.
// References are opaque keys; each resolves to a direct fetch URL and to raw
// bytes.
type MediaStore interface {
	// Upload stores raw image bytes and returns a new reference
	Upload(ctx context.Context, data []byte, contentType string) (entities.MediaRef, error)

	// URL resolves a reference to a direct fetch URL
	URL(key string) string

	// Get resolves a reference to its raw bytes
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the stored object
	Delete(ctx context.Context, key string) error
}
