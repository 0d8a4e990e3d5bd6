package authz

import "errors"

// The five outcomes every decision in the core resolves to. Services wrap them
// with context via fmt.Errorf("%w: ..."), handlers translate with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)
