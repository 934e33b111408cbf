package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
	"github.com/molyneaux/vehicle-photo-api/internal/logging"
	"github.com/molyneaux/vehicle-photo-api/internal/server/services"
)

const healthTimeout = 2 * time.Second

func (s *HTTPServer) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle Photo Uploader API is Running!"})
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	username, password := r.FormValue("username"), r.FormValue("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	user, err := s.users.Register(r.Context(), username, password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	logging.FromContext(r.Context(), s.logger).Info(r.Context(), "Registered", "username", user.UserName)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "User registered successfully",
		"username": user.UserName,
	})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *HTTPServer) token(w http.ResponseWriter, r *http.Request) {
	username, password := r.FormValue("username"), r.FormValue("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := s.users.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeUnauthorized(w, "Incorrect username or password")
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: common.TokenType})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"id": user.ID, "username": user.UserName})
}

func (s *HTTPServer) userQRCode(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	png, err := s.qr.UserQRCode(user.UserName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *HTTPServer) vehicleQRCode(w http.ResponseWriter, r *http.Request) {
	vehicle := r.FormValue("vehicle_number")

	u, err := s.qr.VehicleUploadURL(vehicle)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    fmt.Sprintf("QR code for vehicle %s requested.", strings.TrimSpace(vehicle)),
		"upload_url": u,
	})
}

// parseUpload limits the request body and parses the multipart form.
func (s *HTTPServer) parseUpload(w http.ResponseWriter, r *http.Request) error {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		// some multipart paths drop the wrapped error type
		if strings.Contains(err.Error(), "request body too large") {
			return &http.MaxBytesError{Limit: s.maxUploadBytes}
		}
		return fmt.Errorf("%w: invalid multipart form", common.ErrorValidation)
	}
	return nil
}

func parseCoordinate(r *http.Request, field string, required bool) (float64, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		if required {
			return 0, fmt.Errorf("%w: %s is required", common.ErrorValidation, field)
		}
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", common.ErrorValidation, field)
	}
	return f, nil
}

type uploadResponse struct {
	Message    string `json:"message"`
	Uploader   string `json:"uploader"`
	StoredPath string `json:"stored_path"`
}

func (s *HTTPServer) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := s.parseUpload(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	vehicleID := r.FormValue("vehicle_id")
	if vehicleID == "" {
		s.writeError(w, r, fmt.Errorf("%w: vehicle_id is required", common.ErrorValidation))
		return
	}
	lat, err := parseCoordinate(r, "latitude", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lon, err := parseCoordinate(r, "longitude", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: file is required", common.ErrorValidation))
		return
	}
	defer file.Close()

	stored, err := s.photos.Upload(r.Context(), services.PhotoUpload{
		VehicleID: vehicleID,
		Latitude:  lat,
		Longitude: lon,
		FileName:  header.Filename,
		Body:      file,
	}, user.UserName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:    "Photo uploaded successfully",
		Uploader:   stored.Uploader,
		StoredPath: stored.StoredPath,
	})
}

type batchUploadResponse struct {
	Message     string   `json:"message"`
	Uploader    string   `json:"uploader"`
	VehicleID   string   `json:"vehicle_id"`
	StoredPaths []string `json:"stored_paths"`
}

func (s *HTTPServer) uploadPhotos(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := s.parseUpload(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	vehicleID := r.FormValue("vehicle_number")
	if vehicleID == "" {
		vehicleID = r.FormValue("vehicle_id")
	}
	lat, err := parseCoordinate(r, "latitude", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lon, err := parseCoordinate(r, "longitude", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	headers := r.MultipartForm.File["files"]
	files := make([]services.BatchFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		files = append(files, services.BatchFile{FileName: h.Filename, Body: f})
	}

	stored, err := s.photos.UploadBatch(r.Context(), vehicleID, lat, lon, files, user.UserName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	paths := make([]string, 0, len(stored))
	for _, p := range stored {
		paths = append(paths, p.StoredPath)
	}
	writeJSON(w, http.StatusOK, batchUploadResponse{
		Message:     fmt.Sprintf("%d photos uploaded successfully", len(paths)),
		Uploader:    user.UserName,
		VehicleID:   vehicleID,
		StoredPaths: paths,
	})
}

func (s *HTTPServer) vehicles(w http.ResponseWriter, r *http.Request) {
	list, err := s.photos.ListVehicles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) photo(w http.ResponseWriter, r *http.Request) {
	rc, info, err := s.photos.OpenPhoto(r.Context(), chi.URLParam(r, "vehicle_id"), chi.URLParam(r, "filename"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", info.ContentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if !info.ModTime.IsZero() {
		w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn(r.Context(), "photo stream interrupted", "error", err)
	}
}
