package utils

import (
	"encoding/json"
	"net/http"

	"agromart/apperr"
	"agromart/logging"

	"go.uber.org/zap"
)

type M map[string]any

// RespondWithJSON writes data as a JSON body with the given status.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"error": msg})
}

// RespondWithAppError maps err to its HTTP status. Internal causes are logged
// and replaced by the generic public message.
func RespondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	meta := apperr.MetadataFor(code)

	message := meta.PublicMessage
	if typed := apperr.As(err); typed != nil && meta.Expose && typed.Message() != "" {
		message = typed.Message()
	}

	if meta.HTTPStatus >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), nil).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	RespondWithJSON(w, meta.HTTPStatus, M{"error": message, "code": code})
}
