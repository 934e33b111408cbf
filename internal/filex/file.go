// Package filex contains filesystem helpers for writing into shared (NAS)
// directories.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrExists is returned by WriteExclusive when the target name is taken.
var ErrExists = errors.New("file exists")

// EnsureDir creates root/sub (and parents) if missing and returns its path.
func EnsureDir(root, sub string) (string, error) {
	dir := filepath.Join(root, sub)

	if err := os.MkdirAll(dir, 0o775); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// WriteExclusive writes r to dir/name without ever exposing a partial file
// under that name. The data goes to a hidden temp file in dir first, is
// synced, and is then hard-linked to the final name. If the final name
// already exists ErrExists is returned and the existing file is untouched.
// It returns the number of bytes written.
func WriteExclusive(dir, name string, r io.Reader) (int64, error) {
	tmpPath := filepath.Join(dir, ".upload-"+uuid.NewString()+".tmp")
	finalPath := filepath.Join(dir, name)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o664)
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmpPath) }()

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, fmt.Errorf("write %s: %w", finalPath, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return n, fmt.Errorf("sync %s: %w", finalPath, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", finalPath, err)
	}

	if err := os.Link(tmpPath, finalPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return n, ErrExists
		}
		return n, fmt.Errorf("link %s: %w", finalPath, err)
	}

	return n, nil
}
