package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/book-exchange/cmd/api/identity"
	"github.com/book-exchange/cmd/api/pkgerrors"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type BookHandler struct {
	bookService book.ServiceAPI
	logger      *slog.Logger
}

func NewBookHandler(bookService book.ServiceAPI, logger *slog.Logger) *BookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandler{bookService: bookService, logger: logger}
}

type StatusResponse struct {
	Busy bool `json:"busy"`
}

/* Reports whether the service is processing a mutation. */
func (h *BookHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	responseJSON(h.logger, w, http.StatusOK, StatusResponse{Busy: h.bookService.Busy()})
}

/* Addresses a call to "/books/(expected id here)" according to the requested action.  */
func (h *BookHandler) bookById(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	switch method {
	case http.MethodGet:
		h.getBookById(w, r)
		return
	case http.MethodPut:
		h.updateBook(w, r)
		return
	case http.MethodDelete:
		h.deleteBook(w, r)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

/* Addresses a call to "/books" according to the requested action.  */
func (h *BookHandler) books(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	switch method {
	case http.MethodGet:
		h.listBooks(w, r)
		return
	case http.MethodPost:
		h.createBook(w, r)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

type BookEntry struct {
	Title                string   `json:"title"`
	Author               string   `json:"author"`
	CoverImage           string   `json:"cover_image"`
	Description          string   `json:"description"`
	Genres               []string `json:"genres"`
	Condition            string   `json:"condition"`
	AvailableForExchange *bool    `json:"available_for_exchange"`
}

/* Validates the entry, then stores the entry as a new book owned by the caller. */
func (h *BookHandler) createBook(w http.ResponseWriter, r *http.Request) {
	var bookEntry BookEntry
	if !h.decodeEntry(w, r, &bookEntry) {
		return
	}

	storedBook, err := h.bookService.AddBook(r.Context(), bookToCreateReq(bookEntry), identity.FromContext(r.Context()))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	responseJSON(h.logger, w, http.StatusCreated, bookToResponse(storedBook))
}

type UpdateBookEntry struct {
	Title                *string  `json:"title"`
	Author               *string  `json:"author"`
	CoverImage           *string  `json:"cover_image"`
	Description          *string  `json:"description"`
	Genres               []string `json:"genres"`
	Condition            *string  `json:"condition"`
	AvailableForExchange *bool    `json:"available_for_exchange"`
	Version              int      `json:"version"`
}

/* Validates the entry, then updates the asked book. Only its owner may change it. */
func (h *BookHandler) updateBook(w http.ResponseWriter, r *http.Request) {
	id, err := isolateId(h.logger, w, r, "/books/")
	if err != nil {
		return
	}
	if _, err := h.ownedBook(r, id); err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	var bookEntry UpdateBookEntry
	if !h.decodeEntry(w, r, &bookEntry) {
		return
	}

	updatedBook, err := h.bookService.UpdateBook(r.Context(), bookToUpdateReq(bookEntry, id))
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	responseJSON(h.logger, w, http.StatusOK, bookToResponse(updatedBook))
}

/* Deletes the book. Only its owner may delete it; deleting an unknown book succeeds. */
func (h *BookHandler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := isolateId(h.logger, w, r, "/books/")
	if err != nil {
		return
	}
	if _, err := h.ownedBook(r, id); err != nil && !errors.Is(err, book.ErrResponseBookNotFound) {
		handleError(h.logger, w, r, err)
		return
	}

	if err := h.bookService.DeleteBook(r.Context(), id); err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* Fetches the book and checks that the caller owns it. */
func (h *BookHandler) ownedBook(r *http.Request, id uuid.UUID) (book.Book, error) {
	user := identity.FromContext(r.Context())
	if user == nil {
		return book.Book{}, pkgerrors.ErrResponseUnauthenticated
	}
	b, err := h.bookService.GetBook(r.Context(), id)
	if err != nil {
		return book.Book{}, err
	}
	if b.OwnerID != user.ID {
		return book.Book{}, pkgerrors.ErrResponseForbidden
	}
	return b, nil
}

/* Returns the book with that specific ID. */
func (h *BookHandler) getBookById(w http.ResponseWriter, r *http.Request) {
	id, err := isolateId(h.logger, w, r, "/books/")
	if err != nil {
		return
	}
	//Searching for that ID on Book Service:
	returnedBook, err := h.bookService.GetBook(r.Context(), id)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	responseJSON(h.logger, w, http.StatusOK, bookToResponse(returnedBook))
}

/* Returns every book of the caller. */
func (h *BookHandler) myBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := identity.FromContext(r.Context())
	if user == nil {
		handleError(h.logger, w, r, pkgerrors.ErrResponseUnauthenticated)
		return
	}

	books, err := h.bookService.UserBooks(r.Context(), user.ID)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	results := []BookResponse{}
	for _, b := range books {
		results = append(results, bookToResponse(b))
	}
	responseJSON(h.logger, w, http.StatusOK, results)
}

/* Returns a page of the stored books. */
func (h *BookHandler) listBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter, err := extractFilterParams(query)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}

	sortBy, sortDirection, valid := extractOrderParams(query)
	if !valid {
		handleError(h.logger, w, r, book.ErrResponseQuerySortByInvalid)
		return
	}

	page, pageSize, valid := extractPageParams(query)
	if !valid {
		handleError(h.logger, w, r, pkgerrors.ErrResponseQueryPageInvalid)
		return
	}

	params := book.ListBooksRequest{
		BookFilter:    filter,
		SortBy:        sortBy,
		SortDirection: sortDirection,
		Page:          page,
		PageSize:      pageSize,
	}

	pagedBooks, err := h.bookService.ListBooks(r.Context(), params)
	if err != nil {
		handleError(h.logger, w, r, err)
		return
	}
	responseJSON(h.logger, w, http.StatusOK, pagedBooksToResponse(pagedBooks))
}

/* Reads the JSON body into entry, answering 400 when it is malformed. */
func (h *BookHandler) decodeEntry(w http.ResponseWriter, r *http.Request, entry any) bool {
	return decodeEntry(h.logger, w, r, entry)
}

func decodeEntry(logger *slog.Logger, w http.ResponseWriter, r *http.Request, entry any) bool {
	err := json.NewDecoder(r.Body).Decode(entry) //Read the Json body and save the entry
	if err != nil {
		handleError(logger, w, r, pkgerrors.ErrResponseEntryInvalidJSON.WithDetail(err.Error()))
		return false
	}
	return true
}

/* Converts from BookEntry type to CreateBookRequest type, with no json tags. */
func bookToCreateReq(b BookEntry) book.CreateBookRequest {
	available := true
	if b.AvailableForExchange != nil {
		available = *b.AvailableForExchange
	}
	return book.CreateBookRequest{
		Title:                b.Title,
		Author:               b.Author,
		CoverImage:           b.CoverImage,
		Description:          b.Description,
		Genres:               b.Genres,
		Condition:            book.Condition(b.Condition),
		AvailableForExchange: available,
	}
}

/* Converts from UpdateBookEntry type to UpdateBookRequest type, with no json tags. */
func bookToUpdateReq(b UpdateBookEntry, id uuid.UUID) book.UpdateBookRequest {
	var condition *book.Condition
	if b.Condition != nil {
		c := book.Condition(*b.Condition)
		condition = &c
	}
	return book.UpdateBookRequest{
		ID:                   id,
		Title:                b.Title,
		Author:               b.Author,
		CoverImage:           b.CoverImage,
		Description:          b.Description,
		Genres:               b.Genres,
		Condition:            condition,
		AvailableForExchange: b.AvailableForExchange,
		ExpectedVersion:      b.Version,
	}
}

/* Isolates the ID that follows prefix in the URL. */
func isolateId(logger *slog.Logger, w http.ResponseWriter, r *http.Request, prefix string) (id uuid.UUID, err error) {
	justId, _ := strings.CutPrefix(r.URL.Path, prefix)
	id, err = uuid.Parse(justId)
	if err != nil {
		handleError(logger, w, r, pkgerrors.ErrResponseIdInvalidFormat)
		return id, err
	}
	return id, nil
}

type BookResponse struct {
	ID                   uuid.UUID `json:"id"`
	Title                string    `json:"title"`
	Author               string    `json:"author"`
	CoverImage           string    `json:"cover_image"`
	Description          string    `json:"description"`
	Genres               []string  `json:"genres"`
	Condition            string    `json:"condition"`
	OwnerID              uuid.UUID `json:"owner_id"`
	OwnerName            string    `json:"owner_name"`
	Status               string    `json:"status"`
	AvailableForExchange bool      `json:"available_for_exchange"`
	AddedAt              time.Time `json:"added_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	Version              int       `json:"version"`
}

/*Copy the fields of a book object to an http layer struct with json tags*/
func bookToResponse(b book.Book) BookResponse {
	genres := b.Genres
	if genres == nil {
		genres = []string{}
	}
	return BookResponse{
		ID:                   b.ID,
		Title:                b.Title,
		Author:               b.Author,
		CoverImage:           b.CoverImage,
		Description:          b.Description,
		Genres:               genres,
		Condition:            string(b.Condition),
		OwnerID:              b.OwnerID,
		OwnerName:            b.OwnerName,
		Status:               string(b.Status),
		AvailableForExchange: b.AvailableForExchange,
		AddedAt:              b.AddedAt,
		UpdatedAt:            b.UpdatedAt,
		Version:              b.Version,
	}
}

type PageOfBooksResponse struct {
	PageCurrent int            `json:"page_current"`
	PageTotal   int            `json:"page_total"`
	PageSize    int            `json:"page_size"`
	ItemsTotal  int            `json:"items_total"`
	Results     []BookResponse `json:"results"`
}

/*Copy the fields of a PagedBooks object to an http layer struct with json tags*/
func pagedBooksToResponse(page book.PagedBooks) PageOfBooksResponse {
	results := []BookResponse{}
	for _, b := range page.Results {
		results = append(results, bookToResponse(b))
	}

	return PageOfBooksResponse{
		PageCurrent: page.PageCurrent,
		PageTotal:   page.PageTotal,
		PageSize:    page.PageSize,
		ItemsTotal:  page.ItemsTotal,
		Results:     results,
	}
}

/*Writes a JSON response into a http.ResponseWriter. */
func responseJSON(logger *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.Error("encoding response", "error", err)
		return
	}
}

/*Validates and prepares the filtering parameters of the query.*/
func extractFilterParams(query url.Values) (book.BookFilter, error) {
	filter := book.BookFilter{
		Query:  strings.TrimSpace(query.Get("q")),
		Genres: query["genre"],
	}

	for _, c := range query["condition"] {
		condition := book.Condition(c)
		if !condition.Valid() {
			return book.BookFilter{}, book.ErrResponseQueryConditionInvalid
		}
		filter.Conditions = append(filter.Conditions, condition)
	}

	if ownerStr := query.Get("owner_id"); ownerStr != "" {
		owner, err := uuid.Parse(ownerStr)
		if err != nil {
			return book.BookFilter{}, pkgerrors.ErrResponseIdInvalidFormat
		}
		filter.OwnerID = owner
	}

	if status := book.Status(query.Get("status")); status != "" {
		if !status.Valid() {
			return book.BookFilter{}, book.ErrResponseQueryStatusInvalid
		}
		filter.Status = status
	}

	return filter, nil
}

/*Validates and prepares the ordering parameters of the query.*/
func extractOrderParams(query url.Values) (sortBy string, sortDirection string, valid bool) {
	sortDirection = query.Get("sort_direction")
	switch sortDirection {
	case "":
		sortDirection = book.SortAsc
	case book.SortAsc:
		break
	case book.SortDesc:
		break
	default:
		return sortBy, sortDirection, false
	}

	sortBy = query.Get("sort_by")
	switch sortBy {
	case "":
		sortBy = book.SortByTitle
	case book.SortByTitle:
		break
	case book.SortByAuthor:
		break
	case book.SortByAddedAt:
		break
	default:
		return sortBy, sortDirection, false
	}

	return sortBy, sortDirection, true
}

/*Validates and prepares the extractPageParams parameters of the query.*/
func extractPageParams(query url.Values) (page, pageSize int, valid bool) {
	var err error
	pageStr := query.Get("page") //Convert page value to int and set default to 1.
	if pageStr == "" {
		page = 1
	} else {
		page, err = strconv.Atoi(pageStr)
		if err != nil {
			return 0, 0, false
		}
		if page <= 0 {
			return 0, 0, false
		}
	}

	pageSizeStr := query.Get("page_size") //Convert page_size value to int and set default to 10.
	if pageSizeStr == "" {
		pageSize = book.PageSizeDefault
	} else {
		pageSize, err = strconv.Atoi(pageSizeStr)
		if err != nil {
			return 0, 0, false
		}
		if !(0 < pageSize && pageSize <= book.PageSizeMax) {
			return 0, 0, false
		}
	}

	return page, pageSize, true
}
