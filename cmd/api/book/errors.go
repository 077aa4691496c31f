package book

import "github.com/book-exchange/cmd/api/pkgerrors"

var ErrResponseBookEntryBlankFields = pkgerrors.New(pkgerrors.KindInvalid, 100, "the fields - title, author, description and at least one genre - must be filled correctly.")
var ErrResponseBookNotFound = pkgerrors.New(pkgerrors.KindNotFound, 101, "book not found")
var ErrResponseBookConditionInvalid = pkgerrors.New(pkgerrors.KindInvalid, 102, "condition must be one of: New, Like New, Very Good, Good, Acceptable.")
var ErrResponseBookEntryTooLong = pkgerrors.New(pkgerrors.KindInvalid, 103, "the fields - title and author - must have at most 255 characters.")
var ErrResponseQuerySortByInvalid = pkgerrors.New(pkgerrors.KindInvalid, 105, "query parameter 'sort_by' must be: title, author or added_at. 'sort_direction' must be asc or desc.")
var ErrResponseQueryConditionInvalid = pkgerrors.New(pkgerrors.KindInvalid, 106, "query parameter 'condition' must be one of: New, Like New, Very Good, Good, Acceptable.")
var ErrResponseQueryStatusInvalid = pkgerrors.New(pkgerrors.KindInvalid, 107, "query parameter 'status' is not a known status.")
var ErrResponseQueryRoleInvalid = pkgerrors.New(pkgerrors.KindInvalid, 108, "query parameter 'role' must be requester or provider.")
var ErrResponseExchangeNotFound = pkgerrors.New(pkgerrors.KindNotFound, 110, "exchange not found")
var ErrResponseSelfExchange = pkgerrors.New(pkgerrors.KindInvalidOperation, 111, "you cannot request your own book")
var ErrResponseBookNotAvailable = pkgerrors.New(pkgerrors.KindInvalidOperation, 112, "this book is not available for exchange")
var ErrResponseInvalidTransition = pkgerrors.New(pkgerrors.KindInvalidOperation, 113, "invalid exchange status transition")
var ErrResponseExchangeEntryBlankFields = pkgerrors.New(pkgerrors.KindInvalid, 114, "field book_id must be filled correctly.")
