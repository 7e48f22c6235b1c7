package library

import "errors"

// Sentinel errors returned by Library operations. They are wrapped with the
// offending id, so match them with errors.Is.
var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book is not available")

	ErrNilBook   = errors.New("book must not be nil")
	ErrNilMember = errors.New("member must not be nil")
)
