package support

import "github.com/book-exchange/cmd/api/pkgerrors"

var ErrResponseDonationAmountInvalid = pkgerrors.New(pkgerrors.KindInvalid, 200, "amount must be a positive number with at most two decimals.")
var ErrResponsePlanInvalid = pkgerrors.New(pkgerrors.KindInvalid, 201, "plan must be one of: Free, Standard, Premium.")
var ErrResponseSubscriptionNotFound = pkgerrors.New(pkgerrors.KindNotFound, 202, "subscription not found")
var ErrResponseAlreadySubscribed = pkgerrors.New(pkgerrors.KindInvalidOperation, 203, "already subscribed to this plan")
var ErrResponseNoActiveSubscription = pkgerrors.New(pkgerrors.KindInvalidOperation, 204, "there is no active paid subscription to cancel")
