package book

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Condition string

const (
	ConditionNew        Condition = "New"
	ConditionLikeNew    Condition = "Like New"
	ConditionVeryGood   Condition = "Very Good"
	ConditionGood       Condition = "Good"
	ConditionAcceptable Condition = "Acceptable"
)

var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionVeryGood, ConditionGood, ConditionAcceptable}

func (c Condition) Valid() bool {
	return slices.Contains(Conditions, c)
}

type Status string

const (
	StatusAvailable Status = "Available"
	StatusPending   Status = "Pending Exchange"
	StatusExchanged Status = "Exchanged"
)

var Statuses = []Status{StatusAvailable, StatusPending, StatusExchanged}

func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

type Book struct {
	ID                   uuid.UUID
	Title                string
	Author               string
	CoverImage           string
	Description          string
	Genres               []string
	Condition            Condition
	OwnerID              uuid.UUID
	OwnerName            string
	Status               Status
	AvailableForExchange bool
	AddedAt              time.Time
	UpdatedAt            time.Time
	Version              int
}

type CreateBookRequest struct {
	Title                string
	Author               string
	CoverImage           string
	Description          string
	Genres               []string
	Condition            Condition
	AvailableForExchange bool
}

/* Verifies if all required entry fields are filled and returns a warning message if not. */
func FilledFields(req CreateBookRequest) error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" || strings.TrimSpace(req.Description) == "" {
		return ErrResponseBookEntryBlankFields
	}
	if len(req.Genres) == 0 {
		return ErrResponseBookEntryBlankFields
	}
	if tooLong(&req.Title, &req.Author) {
		return ErrResponseBookEntryTooLong
	}
	if req.Condition != "" && !req.Condition.Valid() {
		return ErrResponseBookConditionInvalid
	}
	return nil
}

// TitleMaxLength bounds title and author, matching their column width.
const TitleMaxLength = 255

func tooLong(fields ...*string) bool {
	for _, f := range fields {
		if f != nil && utf8.RuneCountInString(*f) > TitleMaxLength {
			return true
		}
	}
	return false
}

// UpdateBookRequest carries a partial update. Nil fields are left as stored.
// Status is deliberately absent: only the exchange workflow moves it.
type UpdateBookRequest struct {
	ID                   uuid.UUID
	Title                *string
	Author               *string
	CoverImage           *string
	Description          *string
	Genres               []string
	Condition            *Condition
	AvailableForExchange *bool
	ExpectedVersion      int
}

func (req UpdateBookRequest) validate() error {
	for _, s := range []*string{req.Title, req.Author, req.Description} {
		if s != nil && strings.TrimSpace(*s) == "" {
			return ErrResponseBookEntryBlankFields
		}
	}
	if req.Genres != nil && len(req.Genres) == 0 {
		return ErrResponseBookEntryBlankFields
	}
	if tooLong(req.Title, req.Author) {
		return ErrResponseBookEntryTooLong
	}
	if req.Condition != nil && !req.Condition.Valid() {
		return ErrResponseBookConditionInvalid
	}
	return nil
}

/* Merges the filled fields of the request into b. */
func (req UpdateBookRequest) merge(b Book) Book {
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.CoverImage != nil {
		b.CoverImage = *req.CoverImage
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Genres != nil {
		b.Genres = slices.Clone(req.Genres)
	}
	if req.Condition != nil {
		b.Condition = *req.Condition
	}
	if req.AvailableForExchange != nil {
		b.AvailableForExchange = *req.AvailableForExchange
	}
	return b
}

const (
	SortByTitle   = "title"
	SortByAuthor  = "author"
	SortByAddedAt = "added_at"

	SortAsc  = "asc"
	SortDesc = "desc"

	PageSizeDefault = 10
	PageSizeMax     = 30
)

// BookFilter selects books. Zero fields match everything.
type BookFilter struct {
	Query      string
	Genres     []string
	Conditions []Condition
	OwnerID    uuid.UUID
	Status     Status
}

/* Reports whether b passes every filled criterion of the filter. */
func (f BookFilter) Match(b Book) bool {
	if f.OwnerID != uuid.Nil && b.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		found := strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q)
		for _, g := range b.Genres {
			if found {
				break
			}
			found = strings.Contains(strings.ToLower(g), q)
		}
		if !found {
			return false
		}
	}
	if len(f.Genres) > 0 && !slices.ContainsFunc(b.Genres, func(g string) bool { return slices.Contains(f.Genres, g) }) {
		return false
	}
	if len(f.Conditions) > 0 && !slices.Contains(f.Conditions, b.Condition) {
		return false
	}
	return true
}

type ListBooksRequest struct {
	BookFilter
	SortBy        string
	SortDirection string
	Page          int
	PageSize      int
}

type PagedBooks struct {
	PageCurrent int
	PageTotal   int
	PageSize    int
	ItemsTotal  int
	Results     []Book
}

/* Sorts books in place by the given column and direction, ties broken by id. */
func SortBooks(books []Book, sortBy, sortDirection string) {
	slices.SortStableFunc(books, func(a, b Book) int {
		var c int
		switch sortBy {
		case SortByAuthor:
			c = strings.Compare(a.Author, b.Author)
		case SortByAddedAt:
			c = a.AddedAt.Compare(b.AddedAt)
		default:
			c = strings.Compare(a.Title, b.Title)
		}
		if sortDirection == SortDesc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		return c
	})
}
