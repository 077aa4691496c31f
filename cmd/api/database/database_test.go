package database_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/book-exchange/cmd/api/database"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/book-exchange/cmd/api/support"
	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/matryer/is"
)

var store *database.Store
var sqlDB *sqlx.DB
var ctx context.Context = context.Background()

const defaultMigrationsPath = "../../../migrations"

// TestMain is called before all the tests run.
// Usually is where we add logic to initialise resources.
func TestMain(m *testing.M) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Println("DATABASE_URL is not set, skipping postgres tests")
		os.Exit(0)
	}

	// Setting up the database for tests.
	var err error
	sqlDB, err = database.ConnectDb(connStr)
	if err != nil {
		log.Fatalln(err)
	}

	store = database.NewStore(sqlDB)
	err = database.MigrationUp(store, migrationsPath())
	if err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalln(err)
		}
		log.Println(err)
	}

	os.Exit(m.Run())
}

func migrationsPath() string {
	if path := os.Getenv("DATABASE_MIGRATIONS_PATH"); path != "" {
		return path
	}
	return defaultMigrationsPath
}

func TestCreateBook(t *testing.T) {
	// Removing all data from the test database.
	// We don't want to the database to be tainted with
	// this test data in another tests.
	t.Cleanup(func() {
		teardownDB(t)
	})

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
	t.Cleanup(func() {
		teardownDB(t)
	})

	t.Run("updates a book without errors", func(t *testing.T) {
		is := is.New(t)

		// Setting up, creating a book to be updated.
		b := newBook("A new book to be updated", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		//Updating the created book.
		b.Title = "The book is now updated"
		b.Genres = []string{"Poetry", "Drama"}
		b.UpdatedAt = time.Now().UTC().Round(time.Millisecond)

		updatedBook, err := store.UpdateBook(ctx, b)
		is.NoErr(err)

		b.Version++
		compareBooks(is, updatedBook, b)
	})

	t.Run("stale versions are rejected", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A book updated twice", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		_, err = store.UpdateBook(ctx, b)
		is.NoErr(err)

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

func TestGetAndDeleteBook(t *testing.T) {
	t.Cleanup(func() {
		teardownDB(t)
	})

	t.Run("Gets a book by ID without errors", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A new book", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		returnedBook, err := store.GetBookByID(ctx, b.ID)
		is.NoErr(err)
		compareBooks(is, returnedBook, b)
	})

	t.Run("Gets an non existing book should return a not found error", func(t *testing.T) {
		is := is.New(t)

		returnedBook, err := store.GetBookByID(ctx, uuid.New())
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
		compareBooks(is, returnedBook, book.Book{})
	})

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
	t.Cleanup(func() {
		teardownDB(t)
	})

	is := is.New(t)
	var testBookslist []book.Book
	owner := uuid.New()
	listSize := 30

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
			b.Genres = []string{"Science_Fiction"}
			b.Condition = book.ConditionNew
		}

		newBook, err := store.CreateBook(ctx, b)
		is.NoErr(err)
		compareBooks(is, newBook, b)
		testBookslist = append(testBookslist, b)
	}

	t.Run("List books with limited page size, without errors.", func(t *testing.T) {
		is := is.New(t)

		//Asking 10 books of the list each time.
		for p := 1; p <= 3; p++ {
			itemsTotal, err := store.ListBooksTotals(ctx, book.BookFilter{})
			is.NoErr(err)
			is.Equal(itemsTotal, listSize)
			returnedBooks, err := store.ListBooks(ctx, book.BookFilter{}, book.SortByTitle, book.SortAsc, p, 10)
			is.NoErr(err)
			is.Equal(len(returnedBooks), 10)
			for i, expected := range testBookslist[(p-1)*10 : p*10] {
				compareBooks(is, returnedBooks[i], expected)
			}
		}
	})

	t.Run("sorts by added_at descending", func(t *testing.T) {
		is := is.New(t)

		returnedBooks, err := store.ListBooks(ctx, book.BookFilter{}, book.SortByAddedAt, book.SortDesc, 1, 0)
		is.NoErr(err)
		is.Equal(len(returnedBooks), listSize)
		is.Equal(returnedBooks[0].ID, testBookslist[listSize-1].ID)
	})

	t.Run("filters by owner, genre and condition", func(t *testing.T) {
		is := is.New(t)

		filter := book.BookFilter{
			OwnerID:    owner,
			Genres:     []string{"Science_Fiction", "Poetry"},
			Conditions: []book.Condition{book.ConditionNew},
		}
		total, err := store.ListBooksTotals(ctx, filter)
		is.NoErr(err)
		is.Equal(total, 6)
	})

	t.Run("free text matches title and genre, wildcards are literal", func(t *testing.T) {
		is := is.New(t)

		total, err := store.ListBooksTotals(ctx, book.BookFilter{Query: "science_"})
		is.NoErr(err)
		is.Equal(total, 6)

		total, err = store.ListBooksTotals(ctx, book.BookFilter{Query: "NUMBER 00001"})
		is.NoErr(err)
		is.Equal(total, 10)

		total, err = store.ListBooksTotals(ctx, book.BookFilter{Query: "%"})
		is.NoErr(err)
		is.Equal(total, 0)
	})
}

func TestExchanges(t *testing.T) {
	t.Cleanup(func() {
		teardownDB(t)
	})

	requester := uuid.New()
	provider := uuid.New()

	t.Run("creates, updates and lists an exchange", func(t *testing.T) {
		is := is.New(t)

		e := newExchange(requester, provider)
		created, err := store.CreateExchange(ctx, e)
		is.NoErr(err)
		is.Equal(created.Status, book.ExchangeRequested)
		is.True(created.CompletedAt == nil)

		completedAt := time.Now().UTC().Round(time.Millisecond)
		e.Status = book.ExchangeCompleted
		e.CompletedAt = &completedAt
		updated, err := store.UpdateExchange(ctx, e)
		is.NoErr(err)
		is.Equal(updated.Version, 2)
		is.True(updated.CompletedAt.Equal(completedAt))

		_, err = store.UpdateExchange(ctx, e)
		is.True(errors.Is(err, pkgerrors.ErrResponseVersionConflict))

		asParticipant, err := store.ListExchanges(ctx, book.ExchangeFilter{ParticipantID: requester})
		is.NoErr(err)
		is.Equal(len(asParticipant), 1)

		none, err := store.ListExchanges(ctx, book.ExchangeFilter{ProviderID: provider, Status: book.ExchangeRequested})
		is.NoErr(err)
		is.Equal(len(none), 0)
	})

	t.Run("unknown exchanges are not found", func(t *testing.T) {
		is := is.New(t)

		_, err := store.GetExchangeByID(ctx, uuid.New())
		is.True(errors.Is(err, book.ErrResponseExchangeNotFound))

		_, err = store.UpdateExchange(ctx, newExchange(requester, provider))
		is.True(errors.Is(err, book.ErrResponseExchangeNotFound))
	})
}

func TestTransactions(t *testing.T) {
	t.Cleanup(func() {
		teardownDB(t)
	})

	t.Run("rolled back writes are not visible", func(t *testing.T) {
		is := is.New(t)

		txRepo, tx, err := store.BeginTx(ctx, nil)
		is.NoErr(err)

		b := newBook("A book that never was", uuid.New())
		_, err = txRepo.CreateBook(ctx, b)
		is.NoErr(err)
		is.NoErr(tx.Rollback())

		_, err = store.GetBookByID(ctx, b.ID)
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
	})

	t.Run("only one of two racing updates wins", func(t *testing.T) {
		is := is.New(t)

		b := newBook("A contended book", uuid.New())
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				b := b
				b.Title = fmt.Sprintf("Winner %d", i)
				_, errs[i] = store.UpdateBook(ctx, b)
			}(i)
		}
		wg.Wait()

		failures := 0
		for _, err := range errs {
			if err != nil {
				is.True(errors.Is(err, pkgerrors.ErrResponseVersionConflict))
				failures++
			}
		}
		is.Equal(failures, 1)
	})
}

func TestSupport(t *testing.T) {
	t.Cleanup(func() {
		teardownDB(t)
	})

	user := uuid.New()

	t.Run("lists donations most recent first", func(t *testing.T) {
		is := is.New(t)

		now := time.Now().UTC().Round(time.Millisecond)
		for i := 0; i < 3; i++ {
			_, err := store.CreateDonation(ctx, support.Donation{
				ID:            uuid.New(),
				UserID:        user,
				AmountCents:   int64(100 * (i + 1)),
				CreatedAt:     now.Add(time.Duration(i) * time.Second),
				TransactionID: fmt.Sprintf("TXN-%d", i),
			})
			is.NoErr(err)
		}

		donations, err := store.ListDonations(ctx, user)
		is.NoErr(err)
		is.Equal(len(donations), 3)
		is.Equal(donations[0].AmountCents, int64(300))
	})

	t.Run("upserts one subscription per user", func(t *testing.T) {
		is := is.New(t)

		_, err := store.GetSubscription(ctx, user)
		is.True(errors.Is(err, support.ErrResponseSubscriptionNotFound))

		start := time.Now().UTC().Round(time.Millisecond)
		sub := support.Subscription{
			ID:        uuid.New(),
			UserID:    user,
			Plan:      support.PlanStandard,
			Status:    support.SubscriptionActive,
			StartDate: start,
			EndDate:   start.Add(support.SubscriptionPeriod),
			AutoRenew: true,
		}
		_, err = store.UpsertSubscription(ctx, sub)
		is.NoErr(err)

		sub.Status = support.SubscriptionCanceled
		sub.AutoRenew = false
		_, err = store.UpsertSubscription(ctx, sub)
		is.NoErr(err)

		stored, err := store.GetSubscription(ctx, user)
		is.NoErr(err)
		is.Equal(stored.Status, support.SubscriptionCanceled)
		is.Equal(stored.AutoRenew, false)
		is.True(stored.EndDate.Equal(sub.EndDate))
	})
}

func TestDownMigrations(t *testing.T) {
	is := is.New(t)

	t.Cleanup(func() {
		is.NoErr(database.MigrationUp(store, migrationsPath()))
	})

	err := database.MigrationDown(store, migrationsPath())
	is.NoErr(err)
	sqlStatement := `SELECT EXISTS (
		SELECT FROM 
			pg_tables
		WHERE 
			schemaname = 'public' AND 
			tablename  = 'books'
		);`
	check := sqlDB.QueryRow(sqlStatement)
	var tableExists bool
	err = check.Scan(&tableExists)
	is.NoErr(err)
	is.True(!tableExists)
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

func newExchange(requester, provider uuid.UUID) book.Exchange {
	return book.Exchange{
		ID:            uuid.New(),
		RequesterID:   requester,
		RequesterName: "Requester",
		ProviderID:    provider,
		ProviderName:  "Provider",
		BookID:        uuid.New(),
		BookTitle:     "Some book",
		Status:        book.ExchangeRequested,
		RequestedAt:   time.Now().UTC().Round(time.Millisecond),
		UpdatedAt:     time.Now().UTC().Round(time.Millisecond),
		Version:       1,
	}
}

// compareBooks asserts that two books are equal,
// handling time.Time values correctly.
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

func teardownDB(t *testing.T) {
	is := is.New(t)

	// Truncating every table, cleaning up all the records.
	_, err := sqlDB.Exec(`TRUNCATE TABLE books, exchanges, donations, subscriptions`)
	is.NoErr(err)
}
