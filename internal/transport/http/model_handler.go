package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/khkk24/projeto-how-final/internal/services"
	v1 "github.com/khkk24/projeto-how-final/pkg/contracts/api/v1"
)

// ModelHandler serves the classifier endpoints.
type ModelHandler struct {
	service *services.ModelService
	logger  *slog.Logger
}

// NewModelHandler creates a model handler.
func NewModelHandler(service *services.ModelService, logger *slog.Logger) *ModelHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelHandler{
		service: service,
		logger:  logger.With(slog.String("component", "model_handler")),
	}
}

// Routes returns the model routes.
func (h *ModelHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/train", h.Train)
	r.Post("/predict", h.Predict)
	r.Get("/status", h.Status)

	return r
}

// Train handles POST /api/model/train.
func (h *ModelHandler) Train(w http.ResponseWriter, r *http.Request) {
	var req v1.TrainRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	summary, err := h.service.Train(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Predict handles POST /api/model/predict.
func (h *ModelHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req v1.PredictRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	predictions, err := h.service.Predict(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

// Status handles GET /api/model/status.
func (h *ModelHandler) Status(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Status(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}
