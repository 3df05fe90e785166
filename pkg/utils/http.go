package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

func WriteJSON(w http.ResponseWriter, payload any, code int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(payload)
}

func DecodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ErrorResponse describes a standard error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, message string, code int) error {
	return WriteJSON(w, ErrorResponse{Message: message}, code)
}

// WriteValidationError reports the first violated rule as a short
// human-readable message, e.g. "Missing field: pincode".
func WriteValidationError(w http.ResponseWriter, err error) error {
	message := "invalid request"

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("Missing field: %s", fe.Field())
		default:
			message = fmt.Sprintf("Invalid field: %s", fe.Field())
		}
	}

	return WriteError(w, message, http.StatusBadRequest)
}
