package users

import "context"

type Repository interface {
	// Get returns the user with the given ID, or common.ErrorNotFound.
	Get(ctx context.Context, userID int64) (*User, error)

	// Create inserts a new user. A duplicate user ID yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *User) error

	// SetStarted flips the started flag, creating a minimal record if the
	// user is unknown.
	SetStarted(ctx context.Context, userID int64, started bool) error

	// SetDeleted flips the soft-delete flag and reports whether an existing
	// record was modified.
	SetDeleted(ctx context.Context, userID int64, deleted bool) (bool, error)

	// AddDownloadedFile appends a content hash to the user's download
	// history unless it is already present.
	AddDownloadedFile(ctx context.Context, userID int64, hash string) error
}
