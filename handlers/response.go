package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"elibro/apierr"
)

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Data    interface{}   `json:"data"`
	Error   *apierr.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	writeJSON(w, code, apiResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// WriteAPIError exposes the boundary error writer to route-level handlers
// such as the catch-all 404.
func WriteAPIError(w http.ResponseWriter, logger *zap.Logger, err error) {
	writeError(w, logger, err)
}

// writeError is the single boundary that maps domain failures to HTTP.
// Anything that is not an *apierr.Error is logged and collapsed to a 500
// so internals never leak to the client. The envelope message carries the
// specific detail ("token expired", "invalid token") when there is one;
// clients act on that text, and the taxonomy name only fills in when a
// detail is absent.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	apiError := &apierr.Error{}
	if !errors.As(err, &apiError) {
		logger.Error("unhandled error", zap.Error(err))
		apiError = apierr.Internal("")
	}
	message := apiError.Message
	if apiError.Details != "" {
		message = apiError.Details
	}
	writeJSON(w, apiError.Code, apiResponse{
		Status:  "error",
		Message: message,
		Error:   apiError,
	})
}
