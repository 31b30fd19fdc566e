package http

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	apierrors "github.com/khkk24/projeto-how-final/internal/errors"
	"github.com/khkk24/projeto-how-final/internal/ml"
)

// validate is the shared request validator.
var validate = validator.New()

// respondError maps domain errors onto the API error taxonomy and renders
// the envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierrors.APIError

	var schemaErr *dataset.SchemaError
	var missingFeature *ml.MissingFeatureError
	var artifactErr *ml.ArtifactError

	switch {
	case errors.As(err, &apiErr):
		// Already mapped.
	case errors.Is(err, dataset.ErrNoDataFiles):
		apiErr = apierrors.ErrDataNotFound
	case errors.As(err, &schemaErr):
		apiErr = apierrors.SchemaError(schemaErr.Missing)
	case errors.As(err, &missingFeature):
		apiErr = apierrors.SchemaError(missingFeature.Missing)
	case errors.Is(err, ml.ErrModelNotFitted):
		apiErr = apierrors.ModelStateError(err)
	case errors.As(err, &artifactErr):
		apiErr = apierrors.NewWithDetails(http.StatusConflict, "ARTIFACT_INCONSISTENT",
			"Model artifact bundle is incomplete or inconsistent", artifactErr.Reason)
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		apiErr = apierrors.FileSystemError(r.Method+" "+r.URL.Path, err)
	default:
		apiErr = apierrors.OperationError(err)
	}

	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}

// decodeAndValidate binds the JSON body into v and runs struct validation.
func decodeAndValidate(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	if err := validate.Struct(v); err != nil {
		return apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED",
			"Request validation failed", err.Error())
	}
	return nil
}
