package handler

import (
	"errors"
	"net/http"

	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/pkg/response"
)

// classify maps a service error to an HTTP status and envelope code.
// On read paths a non-participant is forbidden; on the send path it is a
// plain validation failure.
func classify(err error, readPath bool) (int, string) {
	switch {
	case errors.Is(err, domain.ErrChatNotFound):
		return http.StatusNotFound, response.CodeNotFound
	case readPath && errors.Is(err, domain.ErrNotParticipant):
		return http.StatusForbidden, response.CodeForbidden
	case domain.IsValidation(err):
		return http.StatusBadRequest, response.CodeBadRequest
	default:
		return http.StatusInternalServerError, response.CodeInternal
	}
}

// publicMessage hides internal error detail from clients.
func publicMessage(err error, status int, fallback string) string {
	if status == http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}
