package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
	"github.com/molyneaux/vehicle-photo-api/internal/logging"
	"github.com/molyneaux/vehicle-photo-api/internal/server/models"
	"github.com/molyneaux/vehicle-photo-api/internal/server/storage"
)

// PhotoUpload is one geo-tagged photo as received from a client.
type PhotoUpload struct {
	VehicleID string
	Latitude  float64
	Longitude float64
	FileName  string
	Body      io.Reader
}

// BatchFile is one file of a multi-photo upload.
type BatchFile struct {
	FileName string
	Body     io.Reader
}

// StoredPhoto is the outcome of a successful upload.
type StoredPhoto struct {
	VehicleID  string
	Name       string
	StoredPath string
	Uploader   string
}

// PhotoService names photos and hands them to a PhotoStore.
type PhotoService struct {
	store    storage.PhotoStore
	logger   logging.Logger
	maxBatch int
	now      func() time.Time
}

func NewPhotoService(store storage.PhotoStore, maxBatch int, logger logging.Logger) *PhotoService {
	return &PhotoService{
		store:    store,
		logger:   logger.With("module", "photos"),
		maxBatch: maxBatch,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for photo names.
func (s *PhotoService) WithClock(now func() time.Time) *PhotoService {
	s.now = now
	return s
}

// Upload stores one photo under its vehicle. The name is derived from the
// current time and the coordinates; an existing photo with the same name
// yields common.ErrPhotoExists.
func (s *PhotoService) Upload(ctx context.Context, up PhotoUpload, uploader string) (*StoredPhoto, error) {
	if err := ValidateVehicleID(up.VehicleID); err != nil {
		return nil, err
	}
	if err := ValidateCoordinates(up.Latitude, up.Longitude); err != nil {
		return nil, err
	}

	name := PhotoName(s.now(), 0, up.Latitude, up.Longitude, PhotoExt(up.FileName))
	return s.save(ctx, up.VehicleID, name, up.Body, uploader)
}

// UploadBatch stores files under one vehicle with a shared timestamp and a
// two-digit sequence number each. It stops at the first failure; photos
// stored before it are kept and returned alongside the error.
func (s *PhotoService) UploadBatch(ctx context.Context, vehicleID string, lat, lon float64, files []BatchFile, uploader string) ([]*StoredPhoto, error) {
	if err := ValidateVehicleID(vehicleID); err != nil {
		return nil, err
	}
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if len(files) == 0 || len(files) > s.maxBatch {
		return nil, fmt.Errorf("%w: expected 1 to %d files, got %d", common.ErrorValidation, s.maxBatch, len(files))
	}

	ts := s.now()
	stored := make([]*StoredPhoto, 0, len(files))
	for i, f := range files {
		name := PhotoName(ts, i+1, lat, lon, PhotoExt(f.FileName))
		p, err := s.save(ctx, vehicleID, name, f.Body, uploader)
		if err != nil {
			return stored, err
		}
		stored = append(stored, p)
	}

	return stored, nil
}

func (s *PhotoService) save(ctx context.Context, vehicleID, name string, body io.Reader, uploader string) (*StoredPhoto, error) {
	storedPath, err := s.store.Save(ctx, vehicleID, name, body)
	if err != nil {
		if errors.Is(err, common.ErrPhotoExists) {
			return nil, err
		}
		s.logger.Error(ctx, "photo store failed", "vehicle_id", vehicleID, "name", name, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "photo stored", "vehicle_id", vehicleID, "uploader", uploader, "path", storedPath)
	return &StoredPhoto{VehicleID: vehicleID, Name: name, StoredPath: storedPath, Uploader: uploader}, nil
}

// ListVehicles returns every vehicle with its photos. Objects whose names
// were not produced by this service are left out.
func (s *PhotoService) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	objs, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "photo listing failed", "error", err)
		return nil, common.ErrorInternal
	}

	loc := s.now().Location()
	out := make([]models.Vehicle, 0, len(objs))
	for i, v := range objs {
		photos := make([]models.Photo, 0, len(v.Names))
		for _, n := range v.Names {
			if p, ok := ParsePhotoName(n, loc); ok {
				photos = append(photos, p)
			}
		}
		out = append(out, models.Vehicle{ID: i + 1, VehicleID: v.VehicleID, Photos: photos})
	}
	return out, nil
}

// OpenPhoto returns the stored bytes of one photo. Invalid or unknown
// names yield common.ErrorNotFound.
func (s *PhotoService) OpenPhoto(ctx context.Context, vehicleID, fileName string) (io.ReadCloser, storage.ObjectInfo, error) {
	if ValidateVehicleID(vehicleID) != nil || !validStoredName(fileName) {
		return nil, storage.ObjectInfo{}, common.ErrorNotFound
	}

	rc, info, err := s.store.Open(ctx, vehicleID, fileName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, storage.ObjectInfo{}, err
		}
		s.logger.Error(ctx, "photo open failed", "vehicle_id", vehicleID, "name", fileName, "error", err)
		return nil, storage.ObjectInfo{}, common.ErrorInternal
	}
	return rc, info, nil
}
