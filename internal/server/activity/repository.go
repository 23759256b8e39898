package activity

import "context"

type Repository interface {
	// Insert appends one event to the log.
	Insert(ctx context.Context, event *Event) error
}
