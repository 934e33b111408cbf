package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handler builds the routing tree.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// public routes
	r.Get("/", s.root)
	r.Get("/health", s.health)
	r.Post("/register", s.register)
	r.Post("/token", s.token)
	r.Post("/qr_code", s.vehicleQRCode)

	// protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/users/me", s.me)
		r.Get("/generate-qr-code", s.userQRCode)
		r.Post("/upload/photo", s.uploadPhoto)
		r.Post("/upload/photo/", s.uploadPhoto)
		r.Post("/upload_photos", s.uploadPhotos)
		r.Get("/vehicles", s.vehicles)
		r.Get("/photos/{vehicle_id}/{filename}", s.photo)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}
