package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// GetRouter initialises a new http router and applies all routes
func GetRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	return applyRoutes(r, s)
}

func applyRoutes(r chi.Router, s *Server) chi.Router {
	r.Get("/", s.getIndex)
	r.Post("/entries", s.postEntry)
	r.Get("/tabs/{tab}/export.{format}", s.getTabExport)
	r.Get("/records/export.{format}", s.getRecordsExport)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", s.getDashboard)
		r.Post("/refresh", s.postDashboardRefresh)
		r.Get("/export.{format}", s.getDashboardExport)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start),
				"req_id":   middleware.GetReqID(r.Context()),
			}).Info("handled request")
		}()
		next.ServeHTTP(ww, r)
	})
}
