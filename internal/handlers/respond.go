package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/thoughtstream/thoughtstream-backend/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the failure payload for every endpoint. Internal store detail
// never reaches the client; partial failures are flagged so operators can
// trigger reconciliation.
type errorBody struct {
	Success        bool   `json:"success"`
	Code           string `json:"code"`
	Message        string `json:"message"`
	Field          string `json:"field,omitempty"`
	Resource       string `json:"resource,omitempty"`
	PartialFailure bool   `json:"partialFailure,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	body := errorBody{
		Success: false,
		Code:    apperrors.Code(err),
		Message: err.Error(),
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		body.Field = appErr.Field
		body.Resource = appErr.Resource
		if appErr.Kind == apperrors.KindStore {
			body.Message = "internal storage error"
		}
	}
	if apperrors.IsPartial(err) {
		body.PartialFailure = true
		body.Message = "the operation completed partially; see server logs"
	}
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}

	writeJSON(w, status, body)
}
