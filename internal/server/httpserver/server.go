// Package httpserver exposes the user, QR and photo services over HTTP.
package httpserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/molyneaux/vehicle-photo-api/internal/logging"
	"github.com/molyneaux/vehicle-photo-api/internal/server/models"
	"github.com/molyneaux/vehicle-photo-api/internal/server/services"
	"github.com/molyneaux/vehicle-photo-api/internal/server/storage"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	multipartMemory   = 8 << 20
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type PhotoService interface {
	Upload(ctx context.Context, up services.PhotoUpload, uploader string) (*services.StoredPhoto, error)
	UploadBatch(ctx context.Context, vehicleID string, lat, lon float64, files []services.BatchFile, uploader string) ([]*services.StoredPhoto, error)
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	OpenPhoto(ctx context.Context, vehicleID, fileName string) (io.ReadCloser, storage.ObjectInfo, error)
}

type QRService interface {
	UserQRCode(username string) ([]byte, error)
	VehicleUploadURL(vehicleNumber string) (string, error)
}

// Pinger reports database liveness; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Address        string
	MaxUploadBytes int64
	CORSOrigins    []string
}

type HTTPServer struct {
	address        string
	logger         logging.Logger
	users          UserService
	photos         PhotoService
	qr             QRService
	db             Pinger
	maxUploadBytes int64
	corsOrigins    []string
}

func NewHTTPServer(o Options, l logging.Logger, us UserService, ps PhotoService, qr QRService, db Pinger) *HTTPServer {
	return &HTTPServer{
		address:        o.Address,
		logger:         l.With("module", "http_server"),
		users:          us,
		photos:         ps,
		qr:             qr,
		db:             db,
		maxUploadBytes: o.MaxUploadBytes,
		corsOrigins:    o.CORSOrigins,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
