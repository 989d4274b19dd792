package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lzjever/mbos-wso/internal/core"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError maps any error onto the envelope. Non-AppErrors become
// internal errors so upstream detail never leaks raw.
func WriteError(w http.ResponseWriter, err error) {
	var app *core.AppError
	if !errors.As(err, &app) {
		app = core.NewAppError(core.ErrInternal, "internal error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(app.Code.HTTPStatus())
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    string(app.Code),
		Message: app.Message,
	})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteOK writes the uniform {ok, message} result of a lifecycle operation.
func WriteOK(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"message": message,
	})
}
