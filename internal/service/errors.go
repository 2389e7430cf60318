package service

import "errors"

// Engine error taxonomy. Validation errors are raised before any state
// change; ErrInsufficientStock aborts the enclosing order transaction;
// ErrBatchFailed is the single aggregate error a bulk batch reports.
var (
	ErrInvalidQuantity       = errors.New("quantity cannot be negative")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrCategoryMismatch      = errors.New("subcategory does not belong to the given category")
	ErrDuplicateName         = errors.New("product name already in use")
	ErrBatchFailed           = errors.New("bulk update failed")
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("resource belongs to another tenant")
)
