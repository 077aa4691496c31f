package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/book-exchange/cmd/api/identity"
)

type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
}

func NewServer(config ServerConfig, h *BookHandler, sh *SupportHandler) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", ping)
	mux.HandleFunc("/status", h.status)
	mux.HandleFunc("/books", h.books)
	mux.HandleFunc("/books/mine", h.myBooks)
	mux.HandleFunc("/books/", h.bookById)
	mux.HandleFunc("/exchanges", h.exchanges)
	mux.HandleFunc("/exchanges/", h.exchangeById)
	mux.HandleFunc("/donations", sh.donations)
	mux.HandleFunc("/plans", sh.plans)
	mux.HandleFunc("/subscription", sh.subscription)

	server := http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           identity.Middleware(withTimeout(config.RequestTimeout, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &server
}

/* Bounds every request by the configured timeout. */
func withTimeout(timeout time.Duration, next http.Handler) http.Handler {
	if timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

/* Tests the http server connection.  */
func ping(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	if method == http.MethodGet {
		w.WriteHeader(http.StatusNoContent)
		return
	} else {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}
