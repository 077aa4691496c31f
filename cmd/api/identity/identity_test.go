package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/book-exchange/cmd/api/identity"
	"github.com/google/uuid"
	"github.com/matryer/is"
)

func TestMiddleware(t *testing.T) {
	var seen *identity.User
	h := identity.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identity.FromContext(r.Context())
	}))

	t.Run("stores the forwarded user in the context", func(t *testing.T) {
		is := is.New(t)

		id := uuid.New()
		request, _ := http.NewRequest(http.MethodGet, "/books", nil)
		request.Header.Set(identity.HeaderUserID, id.String())
		request.Header.Set(identity.HeaderUserName, "Ada")

		h.ServeHTTP(httptest.NewRecorder(), request)

		is.True(seen != nil)
		is.Equal(seen.ID, id)
		is.Equal(seen.Name, "Ada")
	})

	t.Run("falls back to the id when no name is forwarded", func(t *testing.T) {
		is := is.New(t)

		id := uuid.New()
		request, _ := http.NewRequest(http.MethodGet, "/books", nil)
		request.Header.Set(identity.HeaderUserID, id.String())

		h.ServeHTTP(httptest.NewRecorder(), request)

		is.True(seen != nil)
		is.Equal(seen.Name, id.String())
	})

	t.Run("malformed ids leave the request unauthenticated", func(t *testing.T) {
		is := is.New(t)

		request, _ := http.NewRequest(http.MethodGet, "/books", nil)
		request.Header.Set(identity.HeaderUserID, "not-a-uuid")

		h.ServeHTTP(httptest.NewRecorder(), request)

		is.True(seen == nil)
	})
}
