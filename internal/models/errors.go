package models

import "errors"

var (
	// ErrNotFound is returned when a vessel identifier is absent from the
	// record set or the live state store. Callers translate it to a 404.
	ErrNotFound = errors.New("vessel not found")

	// ErrInvalidInput is returned for malformed identifiers, filter values
	// or unknown port names, before any store access.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDataSource is returned when the AIS data source is missing or
	// unreadable. Fatal at startup.
	ErrDataSource = errors.New("data source unavailable")

	// ErrSchema is returned when a required logical column cannot be
	// resolved under any known alias. Fatal at startup.
	ErrSchema = errors.New("required column unresolvable")
)
