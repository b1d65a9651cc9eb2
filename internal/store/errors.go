package store

import "errors"

var (
	// ErrNotFound reports an absent collection or document.
	ErrNotFound = errors.New("not found")

	// ErrExists reports a duplicate id on create.
	ErrExists = errors.New("already exists")
)
