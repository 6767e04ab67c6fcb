package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrAlreadyPaid signals a second EMI payment attempt for a month that
	// already has one. Reported, not fatal: no record is created.
	ErrAlreadyPaid = errors.New("already_paid")
	// ErrHeaderNotFound is the structural import failure: no header row could
	// be located in the scanned window, so nothing was imported.
	ErrHeaderNotFound = errors.New("header row not found (DATE OUT, CUSTOMER)")
)
