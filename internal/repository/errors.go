// Package repository holds data access logic for domain entities. It defines
// error types that are reused across multiple repositories. These sentinel
// values allow higher layers such as services and handlers to distinguish
// between failure scenarios: ErrForbidden indicates that the current user is
// not allowed to touch a record owned by someone else, while ErrDuplicate
// signals that an insert violated a uniqueness rule (e.g. a second
// registration for the same event and user).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// record they do not own. Handlers translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate is returned when an insert collides with an existing row
// under a unique constraint. Handlers translate this into an HTTP 409.
var ErrDuplicate = errors.New("duplicate")
