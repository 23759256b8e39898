// Package storage persists downloaded files under content-addressed names:
// a file's SHA-256, computed while streaming, becomes its storage key.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// chunkSize is the fixed read size of the streaming loop.
const chunkSize = 4096

// WriteStream copies src into the file at path in fixed-size chunks, feeding
// every chunk through a SHA-256 accumulator before advancing. It returns the
// hex-encoded digest and the number of bytes written. onChunk, if non-nil, is
// invoked after each chunk with the cumulative byte count.
//
// On any error the file is left in place with partial content; the caller's
// failure path is responsible for removing it.
func WriteStream(path string, src io.Reader, onChunk func(written int64)) (string, int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}

	h := sha256.New()
	buf := make([]byte, chunkSize)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, err := f.Write(chunk); err != nil {
				f.Close()
				return "", written, fmt.Errorf("write %s: %w", path, err)
			}
			h.Write(chunk)
			written += int64(n)
			if onChunk != nil {
				onChunk(written)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			return "", written, fmt.Errorf("read stream: %w", readErr)
		}
	}

	if err := f.Close(); err != nil {
		return "", written, fmt.Errorf("close %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), written, nil
}
