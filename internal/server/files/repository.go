package files

import "context"

type Repository interface {
	// Upsert records a finalized file. Keyed on the content hash: inserting
	// an already-known hash is a no-op, the stored content is byte-identical
	// by construction.
	Upsert(ctx context.Context, file *StoredFile) error

	// GetByHash returns the record for a content hash, or
	// common.ErrorNotFound.
	GetByHash(ctx context.Context, hash string) (*StoredFile, error)

	// GetByHashes returns the records for the given hashes, preserving the
	// order of the input. Unknown hashes are skipped.
	GetByHashes(ctx context.Context, hashes []string) ([]*StoredFile, error)

	// SetThumbnail sets the record's thumbnail path if none is set yet
	// (first writer wins).
	SetThumbnail(ctx context.Context, hash, thumbnailPath string) error
}
