package handler

import (
	"encoding/json"
	"net/http"

	"tiny-ledger/internal/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	statusCode := appErr.HTTPStatus()
	writeJSON(w, statusCode, ErrorResponse{
		Message: appErr.Message,
		Status:  statusCode,
	})
}

// writeServiceError renders errors coming back from the services. Anything
// that is not an AppError is reported as an internal error without details.
func writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		writeError(w, appErr)
		return
	}
	writeError(w, errors.NewAppError(errors.InternalError, "an unexpected error occurred"))
}

func decodeJSON(r *http.Request, dst interface{}) *errors.AppError {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewAppError(errors.InvalidArgument, "invalid request body").WithDetails(err.Error())
	}
	return nil
}
