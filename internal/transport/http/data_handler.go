package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	apierrors "github.com/khkk24/projeto-how-final/internal/errors"
	"github.com/khkk24/projeto-how-final/internal/services"
)

// DataHandler serves the yearly-extract endpoints.
type DataHandler struct {
	service *services.DataService
	logger  *slog.Logger
}

// NewDataHandler creates a data handler.
func NewDataHandler(service *services.DataService, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		service: service,
		logger:  logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/years", h.GetYears)
	r.Get("/profile", h.GetProfile)
	r.Post("/upload", h.Upload)

	return r
}

// GetYears handles GET /api/data/years.
func (h *DataHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.ListYears(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"years": years, "count": len(years)})
}

// GetProfile handles GET /api/data/profile?years=2022,2023.
func (h *DataHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	years, err := parseYears(r.URL.Query().Get("years"))
	if err != nil {
		respondError(w, r, apierrors.ErrValidation("years", err.Error()))
		return
	}

	profile, err := h.service.Profile(r.Context(), years)
	if err != nil {
		if errors.Is(err, dataset.ErrNoDataFiles) {
			err = apierrors.DataNotFoundError(years)
		}
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, profile)
}

// Upload handles POST /api/data/upload (multipart, field "file").
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, apierrors.ErrValidation("file", "multipart file field is required"))
		return
	}
	defer file.Close()

	path, err := h.service.SaveUpload(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "file uploaded",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"filename": header.Filename,
		"path":     path,
	})
}

// parseYears parses a comma-separated year list; empty input means defaults.
func parseYears(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, nil
}
