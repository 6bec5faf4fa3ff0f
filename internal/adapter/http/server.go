package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/power-curve-service/internal/adapter/spreadsheet"
	"github.com/couchcryptid/power-curve-service/internal/config"
	"github.com/couchcryptid/power-curve-service/internal/domain"
	"github.com/couchcryptid/power-curve-service/internal/pipeline"
)

// UploadField is the multipart form field holding the export.
const UploadField = "file"

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv"
	mimeZIP  = "application/zip"
)

// multipartMemory is how much of a multipart upload is buffered in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// Service renders and summarizes telemetry exports.
type Service interface {
	Run(ctx context.Context, src pipeline.RecordSource) (pipeline.Result, error)
	Summarize(ctx context.Context, src pipeline.RecordSource) (domain.Summary, error)
	Catalog() *domain.Catalog
}

// Server exposes the power curve API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	svc        Service
	maxUpload  int64
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 power curve routes.
func NewServer(cfg *config.Config, svc Service, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      mux,
			ReadTimeout:  time.Minute,
			WriteTimeout: cfg.HTTPWriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		svc:       svc,
		maxUpload: cfg.MaxUploadBytes,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/power-curves", s.handleRender)
	mux.HandleFunc("POST /v1/datasets/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/models", s.handleModels)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	src, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Run(r.Context(), src)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mimeZIP)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Name}))
	w.Header().Set("Content-Length", strconv.FormatInt(res.Archive.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, res.Archive); err != nil {
		s.logger.Warn("archive download interrupted", "archive", res.Name, "error", err)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	src, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.svc.Summarize(r.Context(), src)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summary)
}

type modelInfo struct {
	Model        string  `json:"model"`
	Samples      int     `json:"samples"`
	MaxWindSpeed float64 `json:"max_wind_speed"`
	RatedPower   float64 `json:"rated_power"`
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	catalog := s.svc.Catalog()
	models := make([]modelInfo, 0, catalog.Len())
	for _, name := range catalog.Models() {
		curve, _ := catalog.Lookup(name)
		info := modelInfo{Model: name, Samples: len(curve.Points)}
		for _, p := range curve.Points {
			info.MaxWindSpeed = max(info.MaxWindSpeed, p.WindSpeed)
			info.RatedPower = max(info.RatedPower, p.Power)
		}
		models = append(models, info)
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"models": models})
}

// readUpload accepts either a multipart form with the export in UploadField or
// the export as the raw request body. The export is read fully into memory.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*spreadsheet.Source, error) {
	if r.ContentLength > s.maxUpload {
		return nil, &http.MaxBytesError{Limit: s.maxUpload}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return spreadsheet.NewSource(uploadName(mediaType), r.Body)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, fmt.Errorf("%w: parse multipart form: %w", domain.ErrIngestion, err)
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Warn("remove multipart temp files", "error", err)
		}
	}()

	file, hdr, err := r.FormFile(UploadField)
	if err != nil {
		return nil, fmt.Errorf("%w: form field %q: %w", domain.ErrIngestion, UploadField, err)
	}
	defer file.Close()
	return spreadsheet.NewSource(hdr.Filename, file)
}

// uploadName gives a raw body a file name matching its declared type so the
// reader does not have to sniff it.
func uploadName(mediaType string) string {
	switch mediaType {
	case mimeXLSX:
		return "upload.xlsx"
	case mimeCSV:
		return "upload.csv"
	default:
		return ""
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		err = fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrEmptyDataset):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIngestion):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Info("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
