package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/premrelay/internal/filex"
)

// Store manages the on-disk layout <root>/<requester_id>/<hash>. Temporary
// files carry random names inside the requester's directory, so concurrent
// transfers never collide before finalization.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// TempPath creates the requester's directory if needed and returns a fresh
// temporary file path inside it.
func (s *Store) TempPath(requesterID int64) (string, error) {
	dir, err := filex.EnsureDir(s.root, strconv.FormatInt(requesterID, 10))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, uuid.NewString()+".part"), nil
}

// FinalPath returns the content-addressed location of a finalized file.
func (s *Store) FinalPath(requesterID int64, hash string) string {
	return filepath.Join(s.root, strconv.FormatInt(requesterID, 10), hash)
}

// Finalize renames a fully written temporary file to its content-addressed
// path. If a file for the same hash already exists, its content is
// byte-identical by construction, so the temporary file is discarded and the
// existing path returned.
func (s *Store) Finalize(requesterID int64, tmpPath, hash string) (string, error) {
	final := s.FinalPath(requesterID, hash)

	if _, err := os.Stat(final); err == nil {
		_ = os.Remove(tmpPath)
		return final, nil
	}

	if err := os.Rename(tmpPath, final); err != nil {
		return "", fmt.Errorf("rename %s: %w", tmpPath, err)
	}

	return final, nil
}

// Discard removes a temporary file after a failed transfer. A missing file
// is not an error.
func (s *Store) Discard(tmpPath string) error {
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
