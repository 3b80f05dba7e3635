package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies service errors for callers. Handlers map kinds to HTTP
// status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindConflict
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	}
	return "internal"
}

// Errors returned by the order and category services. Each one is wrapped in
// an *Error that carries its Kind and the offending identifiers.
var (
	ErrEmptyOrder             = errors.New("empty order")
	ErrGuestsRequired         = errors.New("guests required")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrProductNotFound        = errors.New("product not found")
	ErrProductNotAllowed      = errors.New("product not allowed for role")
	ErrProductUnavailable     = errors.New("product not available")
	ErrVariantRequired        = errors.New("variant required")
	ErrVariantMismatch        = errors.New("variant does not belong to product")
	ErrIngredientMismatch     = errors.New("ingredient does not belong to product")
	ErrMenuNotFound           = errors.New("menu not found")
	ErrMenuNotAllowed         = errors.New("menu not allowed for role")
	ErrMenuUnavailable        = errors.New("menu not available")
	ErrMissingObligatoryField = errors.New("missing obligatory field")
	ErrMenuFieldNotFound      = errors.New("menu field not found")
	ErrDuplicateMenuField     = errors.New("duplicate menu field")
	ErrEmptyMenuField         = errors.New("empty menu field")
	ErrTooManyElements        = errors.New("too many elements in field")
	ErrProductNotInField      = errors.New("product not offered in field")

	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderLineNotFound = errors.New("order line not found")
	ErrAlreadyConfirmed  = errors.New("order already confirmed")
	ErrTableRequired     = errors.New("table number required")

	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryCycle    = errors.New("category cycle")
)

// Error is a classified service error. ProductID, MenuID and FieldID are
// uuid.Nil when they do not apply.
type Error struct {
	Kind      Kind
	Err       error
	Path      string
	ProductID uuid.UUID
	MenuID    uuid.UUID
	FieldID   uuid.UUID
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal when err is not a
// classified service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind Kind, err error, path string) *Error {
	return &Error{Kind: kind, Err: err, Path: path}
}

func productError(kind Kind, err error, path string, productID uuid.UUID) *Error {
	return &Error{Kind: kind, Err: err, Path: path, ProductID: productID}
}

func menuError(kind Kind, err error, path string, menuID, fieldID uuid.UUID) *Error {
	return &Error{Kind: kind, Err: err, Path: path, MenuID: menuID, FieldID: fieldID}
}
