package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/service"
	"srm-agent-portal/internal/storage"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code         string                   `json:"code"`
	Message      string                   `json:"message"`
	Fields       []domain.ValidationError `json:"fields,omitempty"`
	RequiredStep string                   `json:"required_step,omitempty"`
	Operation    string                   `json:"operation,omitempty"`
	Retryable    bool                     `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeProblem(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation  domain.ValidationErrors
		calculation *domain.CalculationError
		missing     *domain.MissingContextError
		remote      *domain.RemoteCallError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    "validation_failed",
			Message: "one or more fields are invalid",
			Fields:  validation,
		})
	case errors.As(err, &calculation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    "quote_unavailable",
			Message: calculation.Message,
		})
	case errors.As(err, &missing):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Code:         "missing_context",
			Message:      "complete the " + missing.RequiredStep.Label() + " step first",
			RequiredStep: missing.RequiredStep.Label(),
		})
	case errors.As(err, &remote) && errors.Is(remote.Err, domain.ErrNotFound):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Code:      "booking_unavailable",
			Message:   "the booking record is no longer open for changes, start a new booking",
			Operation: remote.Operation,
		})
	case errors.As(err, &remote):
		logger.Error("Collaborator call failed", "operation", remote.Operation, "error", remote.Err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Code:      "remote_call_failed",
			Message:   "the booking service could not complete the request, please retry",
			Operation: remote.Operation,
			Retryable: true,
		})
	case errors.Is(err, domain.ErrFlowNotFound):
		writeProblem(w, http.StatusNotFound, "flow_not_found", err.Error())
	case errors.Is(err, domain.ErrFlowCompleted):
		writeProblem(w, http.StatusConflict, "flow_completed", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		writeProblem(w, http.StatusRequestEntityTooLarge, "file_too_large", err.Error())
	case errors.Is(err, service.ErrFileTypeRejected):
		writeProblem(w, http.StatusUnsupportedMediaType, "file_type_rejected", err.Error())
	case errors.Is(err, service.ErrFileNameRequired), errors.Is(err, storage.ErrInvalidKey):
		writeProblem(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, service.ErrFileAccessDenied):
		writeProblem(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, storage.ErrFileNotFound), errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "not_found", err.Error())
	default:
		logger.Error("Unhandled request error", "error", err)
		writeProblem(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return domain.ValidationErrors{{Field: "body", Message: "malformed request body: " + err.Error()}}
	}
	return nil
}
