package storage

import "context"

// ImageStore persists normalized image bytes addressable by filename.
type ImageStore interface {
	// Save writes the payload and returns the public URL path recorded in
	// the product image row.
	Save(ctx context.Context, filename string, data []byte) (string, error)

	// Delete removes a stored file. It reports true iff a file existed and
	// was removed; deleting an absent file is a no-op, not an error.
	Delete(ctx context.Context, filename string) (bool, error)
}
