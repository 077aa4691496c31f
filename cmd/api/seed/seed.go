// Package seed reads the initial catalogue of books from YAML.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed books.yaml
var defaultBooks []byte

// Namespace for ids derived from seed entries, so reseeding never duplicates a book.
var namespace = uuid.MustParse("6f1f4c1e-2b0c-4f7e-9a43-5d7b2c9e8a10")

var ErrSeedInvalid = errors.New("invalid seed data")

type document struct {
	Books []entry `yaml:"books"`
}

type entry struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Author      string    `yaml:"author"`
	CoverImage  string    `yaml:"cover_image"`
	Description string    `yaml:"description"`
	Genres      []string  `yaml:"genres"`
	Condition   string    `yaml:"condition"`
	OwnerID     string    `yaml:"owner_id"`
	OwnerName   string    `yaml:"owner_name"`
	Status      string    `yaml:"status"`
	Available   *bool     `yaml:"available_for_exchange"`
	AddedAt     time.Time `yaml:"added_at"`
}

/* Decodes a seed document. Missing ids are derived from the entry, missing timestamps become now. */
func Load(r io.Reader) ([]book.Book, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding seed: %w", err)
	}

	now := time.Now().UTC().Round(time.Millisecond)
	books := make([]book.Book, 0, len(doc.Books))
	for i, e := range doc.Books {
		b, err := e.toBook(now)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		books = append(books, b)
	}
	return books, nil
}

func LoadFile(path string) ([]book.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the embedded catalogue.
func Default() ([]book.Book, error) {
	return Load(bytes.NewReader(defaultBooks))
}

func (e entry) toBook(now time.Time) (book.Book, error) {
	title, author := strings.TrimSpace(e.Title), strings.TrimSpace(e.Author)
	if title == "" || author == "" || strings.TrimSpace(e.OwnerName) == "" {
		return book.Book{}, fmt.Errorf("title, author and owner_name are required: %w", ErrSeedInvalid)
	}

	ownerID, err := parseOrDerive(e.OwnerID, "owner|"+e.OwnerName)
	if err != nil {
		return book.Book{}, fmt.Errorf("owner_id: %w", err)
	}
	id, err := parseOrDerive(e.ID, "book|"+ownerID.String()+"|"+title+"|"+author)
	if err != nil {
		return book.Book{}, fmt.Errorf("id: %w", err)
	}

	condition := book.Condition(e.Condition)
	if condition == "" {
		condition = book.ConditionGood
	}
	if !condition.Valid() {
		return book.Book{}, fmt.Errorf("condition %q: %w", e.Condition, ErrSeedInvalid)
	}

	status := book.Status(e.Status)
	if status == "" {
		status = book.StatusAvailable
	}
	if !status.Valid() {
		return book.Book{}, fmt.Errorf("status %q: %w", e.Status, ErrSeedInvalid)
	}

	addedAt := e.AddedAt.UTC().Round(time.Millisecond)
	if e.AddedAt.IsZero() {
		addedAt = now
	}

	genres := e.Genres
	if genres == nil {
		genres = []string{}
	}

	return book.Book{
		ID:                   id,
		Title:                title,
		Author:               author,
		CoverImage:           e.CoverImage,
		Description:          e.Description,
		Genres:               genres,
		Condition:            condition,
		OwnerID:              ownerID,
		OwnerName:            e.OwnerName,
		Status:               status,
		AvailableForExchange: e.Available == nil || *e.Available,
		AddedAt:              addedAt,
		UpdatedAt:            addedAt,
		Version:              1,
	}, nil
}

func parseOrDerive(raw, name string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.NewSHA1(namespace, []byte(name)), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", err.Error(), ErrSeedInvalid)
	}
	return id, nil
}
