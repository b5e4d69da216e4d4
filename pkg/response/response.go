package response

import (
	"encoding/json"
	"net/http"

	"vtube-api/pkg/errors"
	"vtube-api/pkg/logger"
)

// Response is the envelope returned by every success path.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorBody is the envelope returned by every failure path.
type ErrorBody struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// HandlerFunc is a request handler that reports failures by returning an error
// instead of writing to the response writer itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts a HandlerFunc into an http.HandlerFunc. Any returned error is
// converted into the structured error envelope; errors that are not an
// *errors.AppError are coerced to internal.
func Wrap(log *logger.Logger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError(w, log, err)
		}
	}
}

// WriteJSON writes a success envelope with the given status code
func WriteJSON(w http.ResponseWriter, log *logger.Logger, statusCode int, data interface{}, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := Response{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    true,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.WithError(err).Error("Failed to encode response")
		return nil
	}
	return nil
}

// WriteError writes an error envelope for the given error
func WriteError(w http.ResponseWriter, log *logger.Logger, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.NewInternalError("Internal server error", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(appErr).Error("Request failed")
	} else {
		log.WithError(appErr).Warn("Request rejected")
	}

	body := ErrorBody{
		StatusCode: appErr.StatusCode,
		Message:    appErr.Message,
		Success:    false,
		Errors:     appErr.Details,
	}
	if body.Errors == nil {
		body.Errors = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		log.WithError(encodeErr).Error("Failed to encode error response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
