package service

import "errors"

var (
	ErrNoDraftOrder        = errors.New("no draft order in progress")
	ErrDraftExists         = errors.New("a draft order is already in progress")
	ErrEmptyOrder          = errors.New("order has no items")
	ErrDuplicateSubmission = errors.New("order already submitted")
	ErrItemNotFound        = errors.New("inventory item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidStatus       = errors.New("unknown order status")
	ErrInvalidItem         = errors.New("invalid inventory item")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrConcurrentUpdate    = errors.New("inventory item changed concurrently, retries exhausted")
)
