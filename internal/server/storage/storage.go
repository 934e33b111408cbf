// Package storage holds the photo stores: a directory tree on a mounted
// NAS share, an S3 bucket, or a MinIO bucket. Objects are addressed by
// vehicle id and file name; both are validated by the caller.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/molyneaux/vehicle-photo-api/internal/server/config"
)

// ObjectInfo describes a stored photo.
type ObjectInfo struct {
	Size        int64
	ContentType string
	ModTime     time.Time
}

// VehicleObjects lists the object names stored under one vehicle id.
type VehicleObjects struct {
	VehicleID string
	Names     []string
}

// PhotoStore persists photo payloads.
//
// Save never replaces an existing object: if vehicleID/name is taken it
// returns common.ErrPhotoExists. Open returns common.ErrorNotFound for
// unknown objects. List returns vehicles sorted by id with names sorted.
type PhotoStore interface {
	Save(ctx context.Context, vehicleID, name string, r io.Reader) (string, error)
	List(ctx context.Context) ([]VehicleObjects, error)
	Open(ctx context.Context, vehicleID, name string) (io.ReadCloser, ObjectInfo, error)
}

// New builds the store selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (PhotoStore, error) {
	switch cfg.StorageBackend {
	case config.StorageFS:
		return NewFSStore(cfg.PhotoRoot), nil
	case config.StorageS3:
		return NewS3Store(ctx, S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
	case config.StorageMinio:
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func objectKey(vehicleID, name string) string {
	return vehicleID + "/" + name
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// groupKeys turns flat "<vehicle>/<name>" keys into per-vehicle listings.
// Keys with any other shape are ignored.
func groupKeys(keys []string) []VehicleObjects {
	byVehicle := map[string][]string{}
	for _, k := range keys {
		vehicle, name, ok := strings.Cut(k, "/")
		if !ok || vehicle == "" || name == "" || strings.Contains(name, "/") {
			continue
		}
		byVehicle[vehicle] = append(byVehicle[vehicle], name)
	}

	out := make([]VehicleObjects, 0, len(byVehicle))
	for v, names := range byVehicle {
		sort.Strings(names)
		out = append(out, VehicleObjects{VehicleID: v, Names: names})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}
