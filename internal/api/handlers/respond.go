package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/circletel/coverage-engine/pkg/errors"
)

// errorBody is the error half of the response envelope
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope is the JSON shape every endpoint responds with
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondWithError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}

// respondWithAppError maps an application error onto the envelope, hiding
// internal detail from the client.
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		respondWithError(w, appErr.HTTPStatus(), string(appErr.Type), appErr.Message)
		return
	}
	respondWithError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
