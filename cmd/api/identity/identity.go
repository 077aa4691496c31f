// Package identity carries the signed-in user of a request. Signing in is
// handled upstream; this package only reads what the gateway forwards.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

type User struct {
	ID   uuid.UUID
	Name string
}

type ctxKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

/* Returns the user stored in ctx, or nil when the request is unauthenticated. */
func FromContext(ctx context.Context) *User {
	u, ok := ctx.Value(ctxKey{}).(User)
	if !ok {
		return nil
	}
	return &u
}

/* Reads the user headers. A missing or malformed id leaves the request unauthenticated. */
func FromHeaders(h http.Header) (User, bool) {
	id, err := uuid.Parse(strings.TrimSpace(h.Get(HeaderUserID)))
	if err != nil || id == uuid.Nil {
		return User{}, false
	}
	name := strings.TrimSpace(h.Get(HeaderUserName))
	if name == "" {
		name = id.String()
	}
	return User{ID: id, Name: name}, true
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := FromHeaders(r.Header); ok {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}
