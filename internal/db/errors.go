package db

import "errors"

var (
	// ErrDuplicateKey is returned when inserting a tweet id already present.
	// Under correct resume logic this signals a cursor bug, not a transient
	// condition.
	ErrDuplicateKey = errors.New("tweet id already exists")

	// ErrNotFound is returned when an update targets a nonexistent tweet
	ErrNotFound = errors.New("tweet not found")

	// ErrEmptyStore is returned when sampling from a store with zero tweets
	ErrEmptyStore = errors.New("store is empty")
)
