package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/google/uuid"
	"github.com/matryer/is"
)

type received struct {
	path string
	body string
}

// newTopicServer stands in for ntfy, recording every published message.
func newTopicServer(t *testing.T, status int) (*httptest.Server, func() []received) {
	var mu sync.Mutex
	var messages []received
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		messages = append(messages, received{path: r.URL.Path, body: string(body)})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received(nil), messages...)
	}
}

func testExchange() book.Exchange {
	return book.Exchange{
		ID:            uuid.New(),
		RequesterID:   uuid.New(),
		RequesterName: "Jane",
		ProviderID:    uuid.New(),
		ProviderName:  "John",
		BookID:        uuid.New(),
		BookTitle:     "Dune",
		Status:        book.ExchangeAccepted,
	}
}

func TestExchangeNotifications(t *testing.T) {
	t.Run("publishes each event on its own topic", func(t *testing.T) {
		is := is.New(t)

		srv, messages := newTopicServer(t, http.StatusOK)
		ntfy := NewNtfy(true, srv.URL+"/test_books", srv.Client())
		e := testExchange()

		is.NoErr(ntfy.ExchangeRequested(context.Background(), e))
		is.NoErr(ntfy.ExchangeResponded(context.Background(), e))
		is.NoErr(ntfy.ExchangeCompleted(context.Background(), e))

		got := messages()
		is.Equal(len(got), 3)
		is.Equal(got[0].path, "/test_books_Exchange_requested")
		is.Equal(got[1].path, "/test_books_Exchange_responded")
		is.Equal(got[2].path, "/test_books_Exchange_completed")
		is.True(strings.Contains(got[0].body, "Book: Dune"))
		is.True(strings.HasPrefix(got[1].body, "Exchange accepted:"))
		is.True(strings.Contains(got[2].body, "New owner: Jane"))
	})

	t.Run("disabled notifier sends nothing", func(t *testing.T) {
		is := is.New(t)

		srv, messages := newTopicServer(t, http.StatusOK)
		ntfy := NewNtfy(false, srv.URL+"/test_books", srv.Client())

		is.NoErr(ntfy.ExchangeRequested(context.Background(), testExchange()))
		is.Equal(len(messages()), 0)
	})

	t.Run("rejected messages are reported", func(t *testing.T) {
		is := is.New(t)

		srv, _ := newTopicServer(t, http.StatusTooManyRequests)
		ntfy := NewNtfy(true, srv.URL+"/test_books", srv.Client())

		err := ntfy.ExchangeCompleted(context.Background(), testExchange())
		is.True(errors.Is(err, ErrNotificationFailed))
	})

	t.Run("expected context timeout error", func(t *testing.T) {
		is := is.New(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()
		ntfy := NewNtfy(true, srv.URL+"/test_books", srv.Client())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := ntfy.ExchangeRequested(ctx, testExchange())
		is.True(errors.Is(err, context.DeadlineExceeded))
	})
}
