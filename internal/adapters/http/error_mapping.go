package httpadapter

import (
	"net/http"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrConfiguration):
		return http.StatusInternalServerError
	case domain.IsKind(err, domain.ErrBackendUnavailable),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
