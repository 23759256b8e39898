// Package files persists metadata about downloaded files. Records are keyed
// by the content hash of the file's bytes: identical content always maps to
// the same record, so repeated downloads deduplicate naturally.
package files

import "time"

// StoredFile is the durable record of one finalized download.
//
// Hash is the hex-encoded SHA-256 of the file's bytes and is the record's
// identity; Path always points to a file with exactly that digest.
// ThumbnailPath is empty until the contact-sheet side task sets it, and is
// the only field mutated after creation.
type StoredFile struct {
	Hash             string    `bson:"file_hash"`
	Path             string    `bson:"file_path"`
	OriginalFilename string    `bson:"original_filename"`
	ThumbnailPath    string    `bson:"thumbnail_path,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
}
