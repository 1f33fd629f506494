package httperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindBadRequest Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindStateConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindStateConflict:
		return "state_conflict"
	default:
		return "bad_request"
	}
}

// BusinessError is an expected failure of a domain rule. Code is the
// stable machine-readable identifier sent to clients.
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e BusinessError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// ErrBusiness keeps the old call sites working; the kind defaults to
// bad request.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindBadRequest, Code: code}
}

func BadRequestErr(code, message string) error {
	return BusinessError{Kind: KindBadRequest, Code: code, Message: message}
}

func NotFoundErr(code, message string) error {
	return BusinessError{Kind: KindNotFound, Code: code, Message: message}
}

func ForbiddenErr(code, message string) error {
	return BusinessError{Kind: KindForbidden, Code: code, Message: message}
}

func ConflictErr(code, message string) error {
	return BusinessError{Kind: KindConflict, Code: code, Message: message}
}

func StateConflictErr(action, current string) error {
	return BusinessError{
		Kind:    KindStateConflict,
		Code:    "invalid_state",
		Message: fmt.Sprintf("cannot %s a booking in status %s", action, current),
	}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
