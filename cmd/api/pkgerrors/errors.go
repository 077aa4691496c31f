package pkgerrors

import (
	"context"
	"errors"
)

// Kind classifies an error so callers can react to it without matching
// every individual value.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidOperation
	KindConflict
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindConflict:
		return "conflict"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

type ErrResponse struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
	Kind    Kind   `json:"-"`
}

func (e ErrResponse) Error() string {
	return e.Message
}

// WithDetail returns a copy of e with detail appended to the message.
func (e ErrResponse) WithDetail(detail string) ErrResponse {
	e.Message = e.Message + detail
	return e
}

func New(kind Kind, code int, message string) ErrResponse {
	return ErrResponse{Code: code, Message: message, Kind: kind}
}

/* Returns the kind of the first ErrResponse found in err's chain. */
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var errR ErrResponse
	if errors.As(err, &errR) {
		return errR.Kind
	}
	return KindInternal
}

var ErrResponseEntryInvalidJSON = New(KindInvalid, 1, "invalid json request.")
var ErrResponseIdInvalidFormat = New(KindInvalid, 2, "the endpoint is not a valid format ID.")
var ErrResponseQueryPageInvalid = New(KindInvalid, 3, "query parameter 'page' must be an int starting in 1. 'page_size' must be an int beetween 1 and 30.")
var ErrResponseQueryPageOutOfRange = New(KindInvalid, 4, "page out of range.")
var ErrResponseUnauthenticated = New(KindUnauthenticated, 5, "user must be authenticated")
var ErrResponseForbidden = New(KindForbidden, 6, "user is not allowed to act on this resource")
var ErrResponseVersionConflict = New(KindConflict, 7, "the record was changed by another request")
var ErrResponseRequestTimeout = New(KindTimeout, 8, "context deadline exceeded")
var ErrResponseFromRespository = New(KindInternal, 9, "repository error: ")
var ErrResponseInternal = New(KindInternal, 10, "internal server error")
