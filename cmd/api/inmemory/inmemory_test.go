package inmemory_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/book-exchange/cmd/api/inmemory"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/book-exchange/cmd/api/support"
	"github.com/google/uuid"
	"github.com/matryer/is"
)

var ctx context.Context = context.Background()

func TestCreateBook(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("creates a book without errors", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A new book", uuid.New())

		newBook, err := store.CreateBook(ctx, b)
		is.NoErr(err)
		compareBooks(is, newBook, b)
	})

	t.Run("creating the same id twice is a conflict", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A duplicated book", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		_, err = store.CreateBook(ctx, b)
		is.True(errors.Is(err, pkgerrors.ErrResponseVersionConflict))
	})
}

func TestUpdateBook(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("updates a book without errors", func(t *testing.T) {
		is := is.New(t)

		// Setting up, creating a book to be updated.
		b := newBook("A new book to be updated", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		//Updating the created book.
		b.Title = "The book is now updated"
		b.Genres = []string{"Poetry"}
		b.UpdatedAt = time.Now().UTC().Round(time.Millisecond)

		updatedBook, err := store.UpdateBook(ctx, b)
		is.NoErr(err)

		b.Version++
		compareBooks(is, updatedBook, b)
	})

	t.Run("owner and creation time are kept", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A book that keeps its owner", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		changed := b
		changed.OwnerID = uuid.New()
		changed.AddedAt = b.AddedAt.Add(time.Hour)

		updatedBook, err := store.UpdateBook(ctx, changed)
		is.NoErr(err)
		is.Equal(updatedBook.OwnerID, b.OwnerID)
		is.True(updatedBook.AddedAt.Equal(b.AddedAt))
	})

	t.Run("stale versions are rejected", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A book updated twice", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		_, err = store.UpdateBook(ctx, b)
		is.NoErr(err)

		//Still carrying version 1.
		_, err = store.UpdateBook(ctx, b)
		is.True(errors.Is(err, pkgerrors.ErrResponseVersionConflict))
	})

	t.Run("Updates an non existing book should return a not found error", func(t *testing.T) {
		is := is.New(t)

		returnedBook, err := store.UpdateBook(ctx, newBook("A book that will not be stored", uuid.New()))
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
		compareBooks(is, returnedBook, book.Book{})
	})
}

func TestGetBook(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("Gets a book by ID without errors", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A new book", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		returnedBook, err := store.GetBookByID(ctx, b.ID)
		is.NoErr(err)
		compareBooks(is, returnedBook, b)
	})

	t.Run("returned genres are a copy", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A book with genres", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		returnedBook, err := store.GetBookByID(ctx, b.ID)
		is.NoErr(err)
		returnedBook.Genres[0] = "Changed"

		again, err := store.GetBookByID(ctx, b.ID)
		is.NoErr(err)
		is.Equal(again.Genres[0], b.Genres[0])
	})

	t.Run("Gets an non existing book should return a not found error", func(t *testing.T) {
		is := is.New(t)

		returnedBook, err := store.GetBookByID(ctx, uuid.New())
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
		compareBooks(is, returnedBook, book.Book{})
	})
}

func TestDeleteBook(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("deletes a book twice without errors", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A book to be deleted", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		is.NoErr(store.DeleteBook(ctx, b.ID))
		is.NoErr(store.DeleteBook(ctx, b.ID))

		_, err = store.GetBookByID(ctx, b.ID)
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
	})
}

func TestListBooks(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	is := is.New(t)
	owner := uuid.New()
	listSize := 25

	t.Run("List books without errors even if there is no books in the database", func(t *testing.T) {
		is := is.New(t)

		returnedBooks, err := store.ListBooks(ctx, book.BookFilter{}, book.SortByTitle, book.SortAsc, 1, 10)
		is.NoErr(err)
		is.Equal(returnedBooks, []book.Book{})
	})

	// Setting up, creating books to be listed.
	for i := 0; i < listSize; i++ {
		b := newBook(fmt.Sprintf("Book number %06v", i), uuid.New())
		b.AddedAt = b.AddedAt.Add(time.Duration(i) * time.Minute)
		if i%5 == 0 {
			b.OwnerID = owner
			b.Genres = []string{"Science Fiction"}
			b.Condition = book.ConditionNew
		}
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)
	}

	t.Run("paginates sorted by title", func(t *testing.T) {
		is := is.New(t)

		returnedBooks, err := store.ListBooks(ctx, book.BookFilter{}, book.SortByTitle, book.SortAsc, 3, 10)
		is.NoErr(err)
		is.Equal(len(returnedBooks), 5)
		is.Equal(returnedBooks[0].Title, "Book number 000020")

		total, err := store.ListBooksTotals(ctx, book.BookFilter{})
		is.NoErr(err)
		is.Equal(total, listSize)
	})

	t.Run("sorts by added_at descending", func(t *testing.T) {
		is := is.New(t)

		returnedBooks, err := store.ListBooks(ctx, book.BookFilter{}, book.SortByAddedAt, book.SortDesc, 1, 3)
		is.NoErr(err)
		is.Equal(returnedBooks[0].Title, "Book number 000024")
		is.Equal(returnedBooks[2].Title, "Book number 000022")
	})

	t.Run("filters by owner, genre and condition", func(t *testing.T) {
		is := is.New(t)

		filter := book.BookFilter{
			OwnerID:    owner,
			Genres:     []string{"Science Fiction", "Poetry"},
			Conditions: []book.Condition{book.ConditionNew},
		}
		returnedBooks, err := store.ListBooks(ctx, filter, book.SortByTitle, book.SortAsc, 1, 0)
		is.NoErr(err)
		is.Equal(len(returnedBooks), 5)
		for _, b := range returnedBooks {
			is.Equal(b.OwnerID, owner)
		}
	})

	t.Run("free text matches title, author and genre ignoring case", func(t *testing.T) {
		is := is.New(t)

		total, err := store.ListBooksTotals(ctx, book.BookFilter{Query: "SCIENCE"})
		is.NoErr(err)
		is.Equal(total, 5)

		total, err = store.ListBooksTotals(ctx, book.BookFilter{Query: "number 00001"})
		is.NoErr(err)
		is.Equal(total, 10)
	})

	t.Run("pages past the end are empty", func(t *testing.T) {
		is := is.New(t)

		returnedBooks, err := store.ListBooks(ctx, book.BookFilter{}, book.SortByTitle, book.SortAsc, 9, 10)
		is.NoErr(err)
		is.Equal(returnedBooks, []book.Book{})
	})
}

func TestExchanges(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	requester := uuid.New()
	provider := uuid.New()
	b := newBook("A book to be exchanged", provider)

	t.Run("creates, updates and lists an exchange", func(t *testing.T) {
		is := is.New(t)

		e := book.Exchange{
			ID:            uuid.New(),
			RequesterID:   requester,
			RequesterName: "Requester",
			ProviderID:    provider,
			ProviderName:  "Provider",
			BookID:        b.ID,
			BookTitle:     b.Title,
			Status:        book.ExchangeRequested,
			RequestedAt:   time.Now().UTC().Round(time.Millisecond),
			UpdatedAt:     time.Now().UTC().Round(time.Millisecond),
			Version:       1,
		}
		created, err := store.CreateExchange(ctx, e)
		is.NoErr(err)
		is.Equal(created, e)

		completedAt := time.Now().UTC().Round(time.Millisecond)
		e.Status = book.ExchangeCompleted
		e.CompletedAt = &completedAt
		updated, err := store.UpdateExchange(ctx, e)
		is.NoErr(err)
		is.Equal(updated.Status, book.ExchangeCompleted)
		is.Equal(updated.Version, 2)
		is.True(updated.CompletedAt.Equal(completedAt))

		asRequester, err := store.ListExchanges(ctx, book.ExchangeFilter{RequesterID: requester})
		is.NoErr(err)
		is.Equal(len(asRequester), 1)

		asParticipant, err := store.ListExchanges(ctx, book.ExchangeFilter{ParticipantID: provider, Status: book.ExchangeCompleted})
		is.NoErr(err)
		is.Equal(len(asParticipant), 1)

		none, err := store.ListExchanges(ctx, book.ExchangeFilter{ProviderID: provider, Status: book.ExchangeRequested})
		is.NoErr(err)
		is.Equal(none, []book.Exchange{})
	})

	t.Run("unknown exchanges are not found", func(t *testing.T) {
		is := is.New(t)

		_, err := store.GetExchangeByID(ctx, uuid.New())
		is.True(errors.Is(err, book.ErrResponseExchangeNotFound))

		_, err = store.UpdateExchange(ctx, book.Exchange{ID: uuid.New(), Version: 1})
		is.True(errors.Is(err, book.ErrResponseExchangeNotFound))
	})
}

func TestBeginTx(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("rolled back writes are not visible", func(t *testing.T) {
		is := is.New(t)

		txRepo, tx, err := store.BeginTx(ctx, nil)
		is.NoErr(err)

		b := newBook("A book that never was", uuid.New())
		_, err = txRepo.CreateBook(ctx, b)
		is.NoErr(err)

		//Visible inside the transaction.
		_, err = txRepo.GetBookByID(ctx, b.ID)
		is.NoErr(err)

		is.NoErr(tx.Rollback())

		_, err = store.GetBookByID(ctx, b.ID)
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
	})

	t.Run("committed writes are visible", func(t *testing.T) {
		is := is.New(t)

		txRepo, tx, err := store.BeginTx(ctx, nil)
		is.NoErr(err)

		b := newBook("A committed book", uuid.New())
		_, err = txRepo.CreateBook(ctx, b)
		is.NoErr(err)
		is.NoErr(tx.Commit())
		is.NoErr(tx.Rollback())

		_, err = store.GetBookByID(ctx, b.ID)
		is.NoErr(err)
	})

	t.Run("subscriptions follow the transaction outcome", func(t *testing.T) {
		is := is.New(t)

		userID := uuid.New()
		sub := support.Subscription{ID: uuid.New(), UserID: userID, Plan: support.PlanStandard, Status: support.SubscriptionActive}

		txRepo, tx, err := store.BeginSupportTx(ctx, nil)
		is.NoErr(err)
		_, err = txRepo.UpsertSubscription(ctx, sub)
		is.NoErr(err)
		is.NoErr(tx.Rollback())

		_, err = store.GetSubscription(ctx, userID)
		is.True(errors.Is(err, support.ErrResponseSubscriptionNotFound))

		txRepo, tx, err = store.BeginSupportTx(ctx, nil)
		is.NoErr(err)
		_, err = txRepo.UpsertSubscription(ctx, sub)
		is.NoErr(err)
		is.NoErr(tx.Commit())

		stored, err := store.GetSubscription(ctx, userID)
		is.NoErr(err)
		is.Equal(stored.Plan, support.PlanStandard)
	})
}

func TestLatency(t *testing.T) {
	store, err := inmemory.NewInMemoryStore(inmemory.WithLatency(time.Second))
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("waiting for the store honours the context deadline", func(t *testing.T) {
		is := is.New(t)

		deadlineCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		_, _, err := store.BeginTx(deadlineCtx, nil)
		is.True(errors.Is(err, context.DeadlineExceeded))

		_, err = store.CreateBook(deadlineCtx, newBook("A slow book", uuid.New()))
		is.True(errors.Is(err, context.DeadlineExceeded))
	})
}

func newBook(title string, owner uuid.UUID) book.Book {
	return book.Book{
		ID:                   uuid.New(),
		Title:                title,
		Author:               "Some Author",
		Description:          "Some description",
		Genres:               []string{"Fiction"},
		Condition:            book.ConditionGood,
		OwnerID:              owner,
		OwnerName:            "Owner",
		Status:               book.StatusAvailable,
		AvailableForExchange: true,
		AddedAt:              time.Now().UTC().Round(time.Millisecond),
		UpdatedAt:            time.Now().UTC().Round(time.Millisecond),
		Version:              1,
	}
}

func compareBooks(is *is.I, a, b book.Book) {
	is.Helper()

	// Make sure we have the correct timestamps.
	is.True(a.AddedAt.Equal(b.AddedAt))
	is.True(a.UpdatedAt.Equal(b.UpdatedAt))

	// Overwrite to be able to compare them.
	b.AddedAt = a.AddedAt
	b.UpdatedAt = a.UpdatedAt

	// Assert that they are equal.
	is.Equal(a, b)
}
