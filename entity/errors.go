package entity

import "errors"

var (
	// ErrStudentNotFound is returned when the scanned index number does not
	// match any student document.
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvalidStatus is returned by the manual override path for a status
	// outside the closed enum.
	ErrInvalidStatus = errors.New("invalid attendance status")

	// ErrStoreUnavailable marks persistence failures. Fatal to the current
	// operation, never to the process.
	ErrStoreUnavailable = errors.New("ledger store unavailable")
)
