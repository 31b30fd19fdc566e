package http

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	apierrors "github.com/khkk24/projeto-how-final/internal/errors"
	"github.com/khkk24/projeto-how-final/internal/services"
	v1 "github.com/khkk24/projeto-how-final/pkg/contracts/api/v1"
)

// AnalysisHandler serves the analysis pipeline endpoints.
type AnalysisHandler struct {
	service *services.AnalysisService
	logger  *slog.Logger
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(service *services.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service: service,
		logger:  logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Post("/run", h.Run)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/results", h.Results)
	r.Get("/export", h.Export)

	return r
}

// Run handles POST /api/analysis/run.
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req v1.AnalysisRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.service.Run(r.Context(), req.Years)
	if err != nil {
		if errors.Is(err, dataset.ErrNoDataFiles) {
			err = apierrors.DataNotFoundError(req.Years)
		}
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Results handles GET /api/analysis/results, returning the latest run.
func (h *AnalysisHandler) Results(w http.ResponseWriter, r *http.Request) {
	result := h.service.Last()
	if result == nil {
		respondError(w, r, apierrors.New(http.StatusNotFound, "NO_RESULTS",
			"No analysis results available; run an analysis first"))
		return
	}
	render.JSON(w, r, result)
}

// Export handles GET /api/analysis/export?format=csv|xlsx. Reports are
// written to the reports directory and the primary artifact is served as an
// attachment.
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var path string
	switch format {
	case "csv":
		written, err := h.service.ExportCSV(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		path = written[0]
	case "xlsx":
		p, err := h.service.ExportXLSX(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		path = p
	default:
		respondError(w, r, apierrors.ErrValidation("format", "format must be csv or xlsx"))
		return
	}

	h.logger.InfoContext(r.Context(), "serving export",
		slog.String("format", format),
		slog.String("path", path))

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}
