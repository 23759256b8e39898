// Package db wires the persistence backend and exposes the per-domain
// repositories through a single explicitly constructed manager. No
// package-level database handles exist; the manager is created at process
// start and closed at shutdown.
package db

import (
	"context"

	"github.com/dmitrijs2005/premrelay/internal/server/activity"
	"github.com/dmitrijs2005/premrelay/internal/server/files"
	"github.com/dmitrijs2005/premrelay/internal/server/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Files() files.Repository
	Activity() activity.Repository
	Close(ctx context.Context) error
}
