package inmemory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

// InMemoryStore keeps every table in a go-memdb database. Write transactions
// are serialized by memdb, so a read-check-write done inside BeginTx cannot
// interleave with another writer.
type InMemoryStore struct {
	db      *memdb.MemDB
	exc     *memdb.Txn
	latency time.Duration
}

type Option func(*InMemoryStore)

// WithLatency delays every write transaction, standing in for a remote store.
func WithLatency(d time.Duration) Option {
	return func(store *InMemoryStore) {
		store.latency = d
	}
}

func NewInMemoryStore(opts ...Option) (*InMemoryStore, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"book": {
				Name: "book",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"owner_id": {
						Name:    "owner_id",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "OwnerID"},
					},
				},
			},
			"exchange": {
				Name: "exchange",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"book_id": {
						Name:    "book_id",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "BookID"},
					},
					"requester_id": {
						Name:    "requester_id",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "RequesterID"},
					},
					"provider_id": {
						Name:    "provider_id",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "ProviderID"},
					},
				},
			},
			"donation": {
				Name: "donation",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"user_id": {
						Name:    "user_id",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "UserID"},
					},
				},
			},
			"subscription": {
				Name: "subscription",
				Indexes: map[string]*memdb.IndexSchema{
					"id": { // One subscription per user.
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "UserID"},
					},
				},
			},
		},
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("validating in-memory schema: %w", err)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	store := &InMemoryStore{db: db}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

type AdaptedBook struct {
	ID                   string
	Title                string
	Author               string
	CoverImage           string
	Description          string
	Genres               []string
	Condition            string
	OwnerID              string
	OwnerName            string
	Status               string
	AvailableForExchange bool
	AddedAt              time.Time
	UpdatedAt            time.Time
	Version              int
}

func adaptBookIdToString(b book.Book) AdaptedBook {
	return AdaptedBook{
		ID:                   b.ID.String(),
		Title:                b.Title,
		Author:               b.Author,
		CoverImage:           b.CoverImage,
		Description:          b.Description,
		Genres:               slices.Clone(b.Genres),
		Condition:            string(b.Condition),
		OwnerID:              b.OwnerID.String(),
		OwnerName:            b.OwnerName,
		Status:               string(b.Status),
		AvailableForExchange: b.AvailableForExchange,
		AddedAt:              b.AddedAt,
		UpdatedAt:            b.UpdatedAt,
		Version:              b.Version,
	}
}

func adaptBookIdToUUID(adptBook AdaptedBook) book.Book {
	return book.Book{
		ID:                   uuid.MustParse(adptBook.ID),
		Title:                adptBook.Title,
		Author:               adptBook.Author,
		CoverImage:           adptBook.CoverImage,
		Description:          adptBook.Description,
		Genres:               slices.Clone(adptBook.Genres),
		Condition:            book.Condition(adptBook.Condition),
		OwnerID:              uuid.MustParse(adptBook.OwnerID),
		OwnerName:            adptBook.OwnerName,
		Status:               book.Status(adptBook.Status),
		AvailableForExchange: adptBook.AvailableForExchange,
		AddedAt:              adptBook.AddedAt,
		UpdatedAt:            adptBook.UpdatedAt,
		Version:              adptBook.Version,
	}
}

type AdaptedExchange struct {
	ID            string
	RequesterID   string
	RequesterName string
	ProviderID    string
	ProviderName  string
	BookID        string
	BookTitle     string
	Status        string
	RequestedAt   time.Time
	CompletedAt   *time.Time
	UpdatedAt     time.Time
	Version       int
}

func adaptExchangeIdToString(e book.Exchange) AdaptedExchange {
	return AdaptedExchange{
		ID:            e.ID.String(),
		RequesterID:   e.RequesterID.String(),
		RequesterName: e.RequesterName,
		ProviderID:    e.ProviderID.String(),
		ProviderName:  e.ProviderName,
		BookID:        e.BookID.String(),
		BookTitle:     e.BookTitle,
		Status:        string(e.Status),
		RequestedAt:   e.RequestedAt,
		CompletedAt:   copyTime(e.CompletedAt),
		UpdatedAt:     e.UpdatedAt,
		Version:       e.Version,
	}
}

func adaptExchangeIdToUUID(adptExchange AdaptedExchange) book.Exchange {
	return book.Exchange{
		ID:            uuid.MustParse(adptExchange.ID),
		RequesterID:   uuid.MustParse(adptExchange.RequesterID),
		RequesterName: adptExchange.RequesterName,
		ProviderID:    uuid.MustParse(adptExchange.ProviderID),
		ProviderName:  adptExchange.ProviderName,
		BookID:        uuid.MustParse(adptExchange.BookID),
		BookTitle:     adptExchange.BookTitle,
		Status:        book.ExchangeStatus(adptExchange.Status),
		RequestedAt:   adptExchange.RequestedAt,
		CompletedAt:   copyTime(adptExchange.CompletedAt),
		UpdatedAt:     adptExchange.UpdatedAt,
		Version:       adptExchange.Version,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// -- Books --

func (store *InMemoryStore) CreateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	sc, err := store.scope(ctx, true)
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	defer sc.end()

	raw, err := sc.txn.First("book", "id", bookEntry.ID.String())
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	if raw != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", pkgerrors.ErrResponseVersionConflict)
	}

	adapted := adaptBookIdToString(bookEntry)
	if err := sc.txn.Insert("book", adapted); err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}

	sc.commit()
	return adaptBookIdToUUID(adapted), nil
}

func (store *InMemoryStore) GetBookByID(ctx context.Context, id uuid.UUID) (book.Book, error) {
	sc, err := store.scope(ctx, false)
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}
	defer sc.end()

	raw, err := sc.txn.First("book", "id", id.String())
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}
	if raw == nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", book.ErrResponseBookNotFound)
	}

	return adaptBookIdToUUID(raw.(AdaptedBook)), nil
}

func (store *InMemoryStore) UpdateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	sc, err := store.scope(ctx, true)
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	defer sc.end()

	raw, err := sc.txn.First("book", "id", bookEntry.ID.String())
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	if raw == nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", book.ErrResponseBookNotFound)
	}

	stored := raw.(AdaptedBook)
	if stored.Version != bookEntry.Version {
		return book.Book{}, fmt.Errorf("updating book on db: %w", pkgerrors.ErrResponseVersionConflict)
	}

	updatedBook := adaptBookIdToString(bookEntry)
	//Ownership and creation time never change.
	updatedBook.OwnerID = stored.OwnerID
	updatedBook.OwnerName = stored.OwnerName
	updatedBook.AddedAt = stored.AddedAt
	updatedBook.Version = stored.Version + 1

	if err := sc.txn.Insert("book", updatedBook); err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}

	sc.commit()
	return adaptBookIdToUUID(updatedBook), nil
}

func (store *InMemoryStore) DeleteBook(ctx context.Context, id uuid.UUID) error {
	sc, err := store.scope(ctx, true)
	if err != nil {
		return fmt.Errorf("deleting book from db: %w", err)
	}
	defer sc.end()

	if _, err := sc.txn.DeleteAll("book", "id", id.String()); err != nil {
		return fmt.Errorf("deleting book from db: %w", err)
	}

	sc.commit()
	return nil
}

func (store *InMemoryStore) ListBooks(ctx context.Context, filter book.BookFilter, sortBy, sortDirection string, page, pageSize int) ([]book.Book, error) {
	books, err := store.filterBooks(ctx, filter)
	if err != nil {
		return []book.Book{}, fmt.Errorf("listing books from db: %w", err)
	}

	book.SortBooks(books, sortBy, sortDirection)

	if pageSize <= 0 {
		return books, nil
	}

	// Apply pagination
	start := (page - 1) * pageSize
	if start >= len(books) {
		return []book.Book{}, nil
	}
	end := start + pageSize
	if end > len(books) {
		end = len(books)
	}

	return books[start:end], nil
}

func (store *InMemoryStore) ListBooksTotals(ctx context.Context, filter book.BookFilter) (int, error) {
	books, err := store.filterBooks(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("counting books from db: %w", err)
	}
	return len(books), nil
}

func (store *InMemoryStore) filterBooks(ctx context.Context, filter book.BookFilter) ([]book.Book, error) {
	sc, err := store.scope(ctx, false)
	if err != nil {
		return nil, err
	}
	defer sc.end()

	var it memdb.ResultIterator
	if filter.OwnerID != uuid.Nil {
		it, err = sc.txn.Get("book", "owner_id", filter.OwnerID.String())
	} else {
		it, err = sc.txn.Get("book", "id")
	}
	if err != nil {
		return nil, err
	}

	books := []book.Book{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		b := adaptBookIdToUUID(obj.(AdaptedBook))
		if !filter.Match(b) {
			continue
		}
		books = append(books, b)
	}
	return books, nil
}

// -- Exchanges --

func (store *InMemoryStore) CreateExchange(ctx context.Context, newExchange book.Exchange) (book.Exchange, error) {
	sc, err := store.scope(ctx, true)
	if err != nil {
		return book.Exchange{}, fmt.Errorf("storing exchange on db: %w", err)
	}
	defer sc.end()

	adapted := adaptExchangeIdToString(newExchange)
	if err := sc.txn.Insert("exchange", adapted); err != nil {
		return book.Exchange{}, fmt.Errorf("storing exchange on db: %w", err)
	}

	sc.commit()
	return adaptExchangeIdToUUID(adapted), nil
}

func (store *InMemoryStore) GetExchangeByID(ctx context.Context, id uuid.UUID) (book.Exchange, error) {
	sc, err := store.scope(ctx, false)
	if err != nil {
		return book.Exchange{}, fmt.Errorf("searching exchange by ID: %w", err)
	}
	defer sc.end()

	raw, err := sc.txn.First("exchange", "id", id.String())
	if err != nil {
		return book.Exchange{}, fmt.Errorf("searching exchange by ID: %w", err)
	}
	if raw == nil {
		return book.Exchange{}, fmt.Errorf("searching exchange by ID: %w", book.ErrResponseExchangeNotFound)
	}

	return adaptExchangeIdToUUID(raw.(AdaptedExchange)), nil
}

func (store *InMemoryStore) UpdateExchange(ctx context.Context, e book.Exchange) (book.Exchange, error) {
	sc, err := store.scope(ctx, true)
	if err != nil {
		return book.Exchange{}, fmt.Errorf("updating exchange on db: %w", err)
	}
	defer sc.end()

	raw, err := sc.txn.First("exchange", "id", e.ID.String())
	if err != nil {
		return book.Exchange{}, fmt.Errorf("updating exchange on db: %w", err)
	}
	if raw == nil {
		return book.Exchange{}, fmt.Errorf("updating exchange on db: %w", book.ErrResponseExchangeNotFound)
	}

	stored := raw.(AdaptedExchange)
	if stored.Version != e.Version {
		return book.Exchange{}, fmt.Errorf("updating exchange on db: %w", pkgerrors.ErrResponseVersionConflict)
	}

	//Only the workflow fields change; the parties and the book are fixed at request time.
	updated := stored
	updated.Status = string(e.Status)
	updated.CompletedAt = copyTime(e.CompletedAt)
	updated.UpdatedAt = e.UpdatedAt
	updated.Version = stored.Version + 1

	if err := sc.txn.Insert("exchange", updated); err != nil {
		return book.Exchange{}, fmt.Errorf("updating exchange on db: %w", err)
	}

	sc.commit()
	return adaptExchangeIdToUUID(updated), nil
}

func (store *InMemoryStore) ListExchanges(ctx context.Context, filter book.ExchangeFilter) ([]book.Exchange, error) {
	sc, err := store.scope(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges from db: %w", err)
	}
	defer sc.end()

	var it memdb.ResultIterator
	switch {
	case filter.BookID != uuid.Nil:
		it, err = sc.txn.Get("exchange", "book_id", filter.BookID.String())
	case filter.RequesterID != uuid.Nil:
		it, err = sc.txn.Get("exchange", "requester_id", filter.RequesterID.String())
	case filter.ProviderID != uuid.Nil:
		it, err = sc.txn.Get("exchange", "provider_id", filter.ProviderID.String())
	default:
		it, err = sc.txn.Get("exchange", "id")
	}
	if err != nil {
		return nil, fmt.Errorf("listing exchanges from db: %w", err)
	}

	exchanges := []book.Exchange{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		e := adaptExchangeIdToUUID(obj.(AdaptedExchange))
		if !filter.Match(e) {
			continue
		}
		exchanges = append(exchanges, e)
	}

	slices.SortFunc(exchanges, func(a, b book.Exchange) int {
		if c := b.RequestedAt.Compare(a.RequestedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return exchanges, nil
}
