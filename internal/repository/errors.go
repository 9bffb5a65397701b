package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a version-guarded write lost the race.
	ErrConflict = errors.New("write conflict")
)
