package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
	"github.com/molyneaux/vehicle-photo-api/internal/filex"
)

// FSStore keeps photos as <root>/<vehicle_id>/<name> on a local or
// network-mounted filesystem.
type FSStore struct {
	root string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

func (s *FSStore) Root() string {
	return s.root
}

// Save creates the vehicle directory if needed and writes the photo without
// ever exposing a partial file under its final name. The returned path is
// the on-disk location.
func (s *FSStore) Save(ctx context.Context, vehicleID, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := filex.EnsureDir(s.root, vehicleID)
	if err != nil {
		return "", err
	}

	if _, err := filex.WriteExclusive(dir, name, r); err != nil {
		if errors.Is(err, filex.ErrExists) {
			return "", common.ErrPhotoExists
		}
		return "", err
	}

	return filepath.Join(dir, name), nil
}

// List walks one level of vehicle directories. Hidden entries (including
// in-flight temp files) are skipped. A missing root lists as empty.
func (s *FSStore) List(ctx context.Context) ([]VehicleObjects, error) {
	dirs, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []VehicleObjects{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.root, err)
	}

	out := []VehicleObjects{}
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}

		entries, err := os.ReadDir(filepath.Join(s.root, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", d.Name(), err)
		}

		v := VehicleObjects{VehicleID: d.Name(), Names: []string{}}
		for _, e := range entries {
			if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			v.Names = append(v.Names, e.Name())
		}
		out = append(out, v)
	}

	return out, nil
}

func (s *FSStore) Open(ctx context.Context, vehicleID, name string) (io.ReadCloser, ObjectInfo, error) {
	p := filepath.Join(s.root, vehicleID, name)

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, common.ErrorNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open %s: %w", p, err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat %s: %w", p, err)
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, ObjectInfo{}, common.ErrorNotFound
	}

	return f, ObjectInfo{Size: st.Size(), ContentType: contentType(name), ModTime: st.ModTime()}, nil
}
