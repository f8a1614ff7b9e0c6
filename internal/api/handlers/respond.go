package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/isdelr/second-brain-be/internal/apperrors"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// unrecognized is logged and reported as a generic server error with no detail.
func writeError(w http.ResponseWriter, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": ve.Fields})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	case errors.Is(err, apperrors.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid auth token"})
	case errors.Is(err, apperrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	case errors.Is(err, apperrors.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"message": err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}
}

// checkPayload runs struct-tag validation and converts failures into the
// field-error list shape the API exposes.
func checkPayload(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return err
	}

	ve := &apperrors.ValidationError{}
	for _, fe := range invalid {
		ve.Fields = append(ve.Fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return ve
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please enter a valid email"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "oneof":
		return "Invalid " + fe.Field()
	default:
		return "Invalid " + fe.Field()
	}
}
