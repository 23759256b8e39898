// Package filex provides small filesystem helpers shared by the storage and
// thumbnail layers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir joins root with the given path elements, creates the resulting
// directory (including parents) if it does not exist, and returns its path.
func EnsureDir(root string, elem ...string) (string, error) {
	dir := filepath.Join(append([]string{root}, elem...)...)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
