package recordv1

import "errors"

var (
	// ErrNotFound means the locator has no stored record.
	ErrNotFound = errors.New("record not found")
	// ErrIO means the backend failed to read or write.
	ErrIO = errors.New("record store io failure")
	// ErrCorrupt means the stored bytes do not decode into the record's schema.
	ErrCorrupt = errors.New("record does not match schema")
	// ErrInvalidLocator means the locator cannot address a record.
	ErrInvalidLocator = errors.New("invalid record locator")
)
