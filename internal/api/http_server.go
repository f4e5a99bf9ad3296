package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"armar/internal/config"
	"armar/internal/models"
	"armar/internal/service"

	"github.com/rs/zerolog"
)

const (
	rootMessage  = "Swarajyache Armar Backend Running"
	maxBodyBytes = 1 << 20

	// HeaderDataSource tells whether a listing came from storage or the static fallback.
	HeaderDataSource = "X-Data-Source"
)

// HTTPServer exposes the public website API.
type HTTPServer struct {
	cfg         config.HTTPConfig
	catalog     *service.CatalogService
	submissions *service.SubmissionService
	diagnostics *service.DiagnosticsService
	logger      *zerolog.Logger
	server      *http.Server
}

func NewHTTPServer(
	cfg config.HTTPConfig,
	catalog *service.CatalogService,
	submissions *service.SubmissionService,
	diagnostics *service.DiagnosticsService,
	logger *zerolog.Logger,
) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{
		cfg:         cfg,
		catalog:     catalog,
		submissions: submissions,
		diagnostics: diagnostics,
		logger:      logger,
	}

	mux := http.NewServeMux()
	srv.route(mux, "/", srv.handleRoot)
	srv.route(mux, "/api/services", srv.handleServices)
	srv.route(mux, "/api/gallery", srv.handleGallery)
	srv.route(mux, "/api/appointments", srv.handleAppointments)
	srv.route(mux, "/api/quotes", srv.handleQuotes)
	srv.route(mux, "/test", srv.handleTest)

	handler := chain(mux,
		recoverMiddleware(logger),
		requestIDMiddleware,
		corsMiddleware(cfg.CORS),
		loggingMiddleware(logger),
	)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// route registers a handler with per-endpoint metrics.
func (s *HTTPServer) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, metricsMiddleware(pattern, h))
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	items, source := s.catalog.ListServices(r.Context())
	w.Header().Set(HeaderDataSource, string(source))
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleGallery(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	items, source := s.catalog.ListGallery(r.Context())
	w.Header().Set(HeaderDataSource, string(source))
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	appt, ok := decodeBody[models.Appointment](w, r)
	if !ok {
		return
	}
	ack, err := s.submissions.CreateAppointment(r.Context(), appt)
	s.writeAck(w, ack, err)
}

func (s *HTTPServer) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	quote, ok := decodeBody[models.QuoteRequest](w, r)
	if !ok {
		return
	}
	ack, err := s.submissions.CreateQuote(r.Context(), quote)
	s.writeAck(w, ack, err)
}

func (s *HTTPServer) handleTest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.diagnostics.Snapshot(r.Context()))
}

func (s *HTTPServer) writeAck(w http.ResponseWriter, ack models.Ack, err error) {
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		s.logger.Error().Err(err).Msg("submission failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// decodeBody reads and validates a JSON record. On failure the 422 response is already written.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var zero T
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large")
			return zero, false
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return zero, false
	}

	record, err := models.Decode[T](raw)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return zero, false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return zero, false
	}
	return record, true
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	return false
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"detail": message})
}

func writeValidationError(w http.ResponseWriter, verr *models.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string][]models.FieldError{"detail": verr.Fields})
}
