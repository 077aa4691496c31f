package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/book-exchange/cmd/api/pkgerrors"
)

var statusByKind = map[pkgerrors.Kind]int{
	pkgerrors.KindInvalid:          http.StatusBadRequest,
	pkgerrors.KindUnauthenticated:  http.StatusUnauthorized,
	pkgerrors.KindForbidden:        http.StatusForbidden,
	pkgerrors.KindNotFound:         http.StatusNotFound,
	pkgerrors.KindInvalidOperation: http.StatusConflict,
	pkgerrors.KindConflict:         http.StatusConflict,
	pkgerrors.KindTimeout:          http.StatusGatewayTimeout,
	pkgerrors.KindInternal:         http.StatusInternalServerError,
}

/* Logs the error and answers with the status matching its kind. Internal details never reach the client. */
func handleError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	kind := pkgerrors.KindOf(err)
	status := statusByKind[kind]

	var body pkgerrors.ErrResponse
	switch kind {
	case pkgerrors.KindInternal:
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body = pkgerrors.ErrResponseInternal
	case pkgerrors.KindTimeout:
		logger.WarnContext(r.Context(), "request timed out", "method", r.Method, "path", r.URL.Path, "error", err)
		body = pkgerrors.ErrResponseRequestTimeout
	default:
		logger.InfoContext(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "kind", kind, "error", err)
		if !errors.As(err, &body) {
			body = pkgerrors.ErrResponseInternal
		}
	}
	responseJSON(logger, w, status, body)
}
