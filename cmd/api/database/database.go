package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/book-exchange/cmd/api/support"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	tableBooks     = "books"
	tableExchanges = "exchanges"
)

// Postgres error codes reported when SERIALIZABLE transactions collide.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

var dialect = goqu.Dialect("postgres")

type DBTX interface {
	sqlx.ExtContext
}

type Store struct {
	db  *sqlx.DB
	exc *Executor
}

type Executor struct {
	DBTX
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:  db,
		exc: NewExc(db),
	}
}

func NewExc(dbtx DBTX) *Executor {
	return &Executor{DBTX: dbtx}
}

func (store *Store) BeginTx(ctx context.Context, opts *sql.TxOptions) (book.Repository, driver.Tx, error) {
	txRepo, tx, err := store.beginTx(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return txRepo, tx, nil
}

func (store *Store) BeginSupportTx(ctx context.Context, opts *sql.TxOptions) (support.Repository, driver.Tx, error) {
	txRepo, tx, err := store.beginTx(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return txRepo, tx, nil
}

func (store *Store) beginTx(ctx context.Context, opts *sql.TxOptions) (*Store, driver.Tx, error) {
	if _, inTx := store.exc.DBTX.(*sqlx.Tx); inTx { //Already inside a larger transaction: join it.
		return store, nopTx{}, nil
	}
	tx, err := store.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", translate(err))
	}

	txRepo := NewStore(store.db)
	txRepo.exc = NewExc(tx)
	return txRepo, &TxWrapper{tx: tx}, nil
}

// TxWrapper reports serialization failures on commit as version conflicts.
type TxWrapper struct {
	tx *sqlx.Tx
}

func (w *TxWrapper) Commit() error {
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", translate(err))
	}
	return nil
}

func (w *TxWrapper) Rollback() error {
	err := w.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

/* Connects to the database trought a connection string and returns a pointer to a valid DB object (*sqlx.DB). */
func ConnectDb(connStr string) (*sqlx.DB, error) {
	sqlDB, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to db, openning: %w", err)
	}

	err = sqlDB.Ping()
	if err != nil {
		return nil, fmt.Errorf("connecting to db, pingging: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("successfully connected to the database")
	return sqlDB, nil
}

func newMigrate(store *Store, path string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(store.db.DB, &postgres.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", path),
		"postgres", driver)
}

func MigrationUp(store *Store, path string) error {
	m, err := newMigrate(store, path)
	if err != nil {
		return fmt.Errorf("migrating up: %w", err)
	}

	err = m.Up()
	if err != nil {
		return fmt.Errorf("migrating up: %w", err)
	}
	return nil
}

func MigrationDown(store *Store, path string) error {
	m, err := newMigrate(store, path)
	if err != nil {
		return fmt.Errorf("migrating down: %w", err)
	}

	err = m.Down()
	if err != nil {
		return fmt.Errorf("migrating down: %w", err)
	}
	return nil
}

/* Maps postgres concurrency failures to a version conflict so callers can retry. */
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation:
			return fmt.Errorf("%s: %w", pqErr.Message, pkgerrors.ErrResponseVersionConflict)
		}
	}
	return err
}

// -- Books --

type bookRow struct {
	ID                   uuid.UUID      `db:"id"`
	Title                string         `db:"title"`
	Author               string         `db:"author"`
	CoverImage           string         `db:"cover_image"`
	Description          string         `db:"description"`
	Genres               pq.StringArray `db:"genres"`
	Condition            string         `db:"condition"`
	OwnerID              uuid.UUID      `db:"owner_id"`
	OwnerName            string         `db:"owner_name"`
	Status               string         `db:"status"`
	AvailableForExchange bool           `db:"available_for_exchange"`
	AddedAt              time.Time      `db:"added_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
	Version              int            `db:"version"`
}

var bookColumns = []any{"id", "title", "author", "cover_image", "description", "genres", "condition",
	"owner_id", "owner_name", "status", "available_for_exchange", "added_at", "updated_at", "version"}

func (r bookRow) toBook() book.Book {
	genres := []string(r.Genres)
	if genres == nil {
		genres = []string{}
	}
	return book.Book{
		ID:                   r.ID,
		Title:                r.Title,
		Author:               r.Author,
		CoverImage:           r.CoverImage,
		Description:          r.Description,
		Genres:               genres,
		Condition:            book.Condition(r.Condition),
		OwnerID:              r.OwnerID,
		OwnerName:            r.OwnerName,
		Status:               book.Status(r.Status),
		AvailableForExchange: r.AvailableForExchange,
		AddedAt:              r.AddedAt.UTC(),
		UpdatedAt:            r.UpdatedAt.UTC(),
		Version:              r.Version,
	}
}

func genresOf(b book.Book) pq.StringArray {
	if b.Genres == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(b.Genres)
}

/* Stores the book into the database, checks and returns it if succeed. */
func (store *Store) CreateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	query, args, err := dialect.Insert(tableBooks).Prepared(true).
		Rows(goqu.Record{
			"id":                     bookEntry.ID,
			"title":                  bookEntry.Title,
			"author":                 bookEntry.Author,
			"cover_image":            bookEntry.CoverImage,
			"description":            bookEntry.Description,
			"genres":                 genresOf(bookEntry),
			"condition":              string(bookEntry.Condition),
			"owner_id":               bookEntry.OwnerID,
			"owner_name":             bookEntry.OwnerName,
			"status":                 string(bookEntry.Status),
			"available_for_exchange": bookEntry.AvailableForExchange,
			"added_at":               bookEntry.AddedAt,
			"updated_at":             bookEntry.UpdatedAt,
			"version":                bookEntry.Version,
		}).
		Returning(bookColumns...).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}

	var row bookRow
	if err := store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", translate(err))
	}
	return row.toBook(), nil
}

/* Searches a book in database based on ID and returns it if succeed. */
func (store *Store) GetBookByID(ctx context.Context, id uuid.UUID) (book.Book, error) {
	query, args, err := dialect.From(tableBooks).Prepared(true).
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}

	var row bookRow
	err = store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return book.Book{}, fmt.Errorf("searching by ID: %w", book.ErrResponseBookNotFound)
		default:
			return book.Book{}, fmt.Errorf("searching by ID: %w", translate(err))
		}
	}
	return row.toBook(), nil
}

/* Replaces the book when the stored version still matches, bumping the version. */
func (store *Store) UpdateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	query, args, err := dialect.Update(tableBooks).Prepared(true).
		Set(goqu.Record{
			"title":                  bookEntry.Title,
			"author":                 bookEntry.Author,
			"cover_image":            bookEntry.CoverImage,
			"description":            bookEntry.Description,
			"genres":                 genresOf(bookEntry),
			"condition":              string(bookEntry.Condition),
			"status":                 string(bookEntry.Status),
			"available_for_exchange": bookEntry.AvailableForExchange,
			"updated_at":             bookEntry.UpdatedAt,
			"version":                goqu.L("version + 1"),
		}).
		Where(goqu.C("id").Eq(bookEntry.ID), goqu.C("version").Eq(bookEntry.Version)).
		Returning(bookColumns...).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}

	var row bookRow
	err = store.exc.QueryRowxContext(ctx, query, args...).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return book.Book{}, fmt.Errorf("updating book on db: %w", store.missOrStale(ctx, tableBooks, bookEntry.ID, book.ErrResponseBookNotFound))
	}
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", translate(err))
	}
	return row.toBook(), nil
}

/* Tells apart a row that vanished from one whose version moved on. */
func (store *Store) missOrStale(ctx context.Context, table string, id uuid.UUID, notFound error) error {
	query, args, err := dialect.From(table).Prepared(true).
		Select(goqu.COUNT("*")).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return err
	}
	var n int
	if err := store.exc.QueryRowxContext(ctx, query, args...).Scan(&n); err != nil {
		return translate(err)
	}
	if n == 0 {
		return notFound
	}
	return pkgerrors.ErrResponseVersionConflict
}

func (store *Store) DeleteBook(ctx context.Context, id uuid.UUID) error {
	query, args, err := dialect.Delete(tableBooks).Prepared(true).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("deleting book from db: %w", err)
	}
	if _, err := store.exc.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting book from db: %w", translate(err))
	}
	return nil
}

var bookSortColumns = map[string]exp.LiteralExpression{
	book.SortByTitle:   goqu.L(`title COLLATE "C"`),
	book.SortByAuthor:  goqu.L(`author COLLATE "C"`),
	book.SortByAddedAt: goqu.L(`added_at`),
}

/* Returns filtered content of database in a list of books*/
func (store *Store) ListBooks(ctx context.Context, filter book.BookFilter, sortBy, sortDirection string, page, pageSize int) ([]book.Book, error) {
	col, ok := bookSortColumns[sortBy]
	if !ok {
		col = bookSortColumns[book.SortByTitle]
	}
	order := col.Asc()
	if sortDirection == book.SortDesc {
		order = col.Desc()
	}

	stmt := dialect.From(tableBooks).Prepared(true).
		Select(bookColumns...).
		Where(bookConditions(filter)...).
		Order(order, goqu.L(`id::text COLLATE "C"`).Asc())
	if pageSize > 0 {
		stmt = stmt.Limit(uint(pageSize)).Offset(uint((page - 1) * pageSize))
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return []book.Book{}, fmt.Errorf("listing books from db: %w", err)
	}

	var rows []bookRow
	if err := sqlx.SelectContext(ctx, store.exc, &rows, query, args...); err != nil {
		return []book.Book{}, fmt.Errorf("listing books from db: %w", translate(err))
	}

	books := make([]book.Book, 0, len(rows))
	for _, r := range rows {
		books = append(books, r.toBook())
	}
	return books, nil
}

/* Returns the total number of books matching the filter. */
func (store *Store) ListBooksTotals(ctx context.Context, filter book.BookFilter) (int, error) {
	query, args, err := dialect.From(tableBooks).Prepared(true).
		Select(goqu.COUNT("*")).
		Where(bookConditions(filter)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("counting books from db: %w", err)
	}

	var itemsTotal int
	if err := store.exc.QueryRowxContext(ctx, query, args...).Scan(&itemsTotal); err != nil {
		return 0, fmt.Errorf("counting books from db: %w", translate(err))
	}
	return itemsTotal, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func bookConditions(filter book.BookFilter) []exp.Expression {
	where := []exp.Expression{}
	if filter.OwnerID != uuid.Nil {
		where = append(where, goqu.C("owner_id").Eq(filter.OwnerID))
	}
	if filter.Status != "" {
		where = append(where, goqu.C("status").Eq(string(filter.Status)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		where = append(where, goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
			goqu.L("EXISTS (SELECT 1 FROM unnest(genres) g WHERE g ILIKE ?)", pattern),
		))
	}
	if len(filter.Genres) > 0 {
		where = append(where, goqu.L("genres && ?::text[]", pq.StringArray(filter.Genres)))
	}
	if len(filter.Conditions) > 0 {
		conditions := make([]string, 0, len(filter.Conditions))
		for _, c := range filter.Conditions {
			conditions = append(conditions, string(c))
		}
		where = append(where, goqu.C("condition").In(conditions))
	}
	return where
}
