package ledger

import (
	"errors"
	"fmt"

	"github.com/roach88/craftledger/internal/model"
)

// Error is the structured error returned by every ledger operation.
//
// Business-rule errors (every code except CodeStorageUnavailable) are
// detected before any write; the operation's transaction is rolled back and
// no state changed. CodeStorageUnavailable wraps the driver error in Err and
// means the operation was not applied.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Kind and Item identify the item involved, if any.
	Kind model.ItemKind
	Item string

	// Needed and Available are set for shortfall errors.
	Needed    int64
	Available int64

	// Err is the underlying cause for storage errors.
	Err error
}

// Code categorizes ledger errors.
type Code string

const (
	// CodeUnknownItem indicates a material, product or recipe line doesn't exist.
	CodeUnknownItem Code = "UNKNOWN_ITEM"

	// CodeInvalidQuantity indicates a quantity, delta or threshold out of range.
	CodeInvalidQuantity Code = "INVALID_QUANTITY"

	// CodeInvalidPrice indicates a negative price.
	CodeInvalidPrice Code = "INVALID_PRICE"

	// CodeInvalidName indicates an empty item or actor name.
	CodeInvalidName Code = "INVALID_NAME"

	// CodeInsufficientMaterial indicates a recipe line can't be covered.
	CodeInsufficientMaterial Code = "INSUFFICIENT_MATERIAL"

	// CodeInsufficientStock indicates a sale or withdrawal exceeds stock.
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"

	// CodeAlreadyClockedIn indicates the actor already has an open session.
	CodeAlreadyClockedIn Code = "ALREADY_CLOCKED_IN"

	// CodeNotClockedIn indicates the actor has no open session.
	CodeNotClockedIn Code = "NOT_CLOCKED_IN"

	// CodeStorageUnavailable indicates the store failed or couldn't commit.
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying storage error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a ledger *Error with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of a ledger *Error, or "" for any other error.
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func errUnknownItem(kind model.ItemKind, name string) *Error {
	return &Error{
		Code:    CodeUnknownItem,
		Message: fmt.Sprintf("unknown %s %q", kind, name),
		Kind:    kind,
		Item:    name,
	}
}

func errUnknownKind(kind model.ItemKind) *Error {
	return &Error{
		Code:    CodeUnknownItem,
		Message: fmt.Sprintf("unknown item kind %q", kind),
		Kind:    kind,
	}
}

func errUnknownRecipeLine(product, material string) *Error {
	return &Error{
		Code:    CodeUnknownItem,
		Message: fmt.Sprintf("no recipe line for %q using %q", product, material),
		Kind:    model.KindProduct,
		Item:    product,
	}
}

func errInvalidQuantity(format string, args ...any) *Error {
	return &Error{
		Code:    CodeInvalidQuantity,
		Message: fmt.Sprintf(format, args...),
	}
}

func errInvalidPrice(price int64) *Error {
	return &Error{
		Code:    CodeInvalidPrice,
		Message: fmt.Sprintf("price must be >= 0, got %d", price),
	}
}

func errInvalidName(what string) *Error {
	return &Error{
		Code:    CodeInvalidName,
		Message: what + " name must not be empty",
	}
}

func errInsufficientMaterial(material string, needed, available int64) *Error {
	return &Error{
		Code:      CodeInsufficientMaterial,
		Message:   fmt.Sprintf("not enough %s: needed %d, available %d", material, needed, available),
		Kind:      model.KindMaterial,
		Item:      material,
		Needed:    needed,
		Available: available,
	}
}

func errInsufficientStock(kind model.ItemKind, name string, requested, available int64) *Error {
	return &Error{
		Code:      CodeInsufficientStock,
		Message:   fmt.Sprintf("not enough %s in stock: requested %d, available %d", name, requested, available),
		Kind:      kind,
		Item:      name,
		Needed:    requested,
		Available: available,
	}
}

func errAlreadyClockedIn(actor string) *Error {
	return &Error{
		Code:    CodeAlreadyClockedIn,
		Message: fmt.Sprintf("%s is already clocked in", actor),
	}
}

func errNotClockedIn(actor string) *Error {
	return &Error{
		Code:    CodeNotClockedIn,
		Message: fmt.Sprintf("%s is not clocked in", actor),
	}
}

func errStorage(op string, err error) *Error {
	return &Error{
		Code:    CodeStorageUnavailable,
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}
