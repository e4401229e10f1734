package domain

import "errors"

// ErrSessionNotFound is returned when a session ID is not registered.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when creating a session whose ID is already registered.
var ErrSessionExists = errors.New("session already exists")

// ErrNothingOpenToClose is returned when an end call finds no matching open unit on the spine.
var ErrNothingOpenToClose = errors.New("nothing open to close")

// ErrArchiveNotFound is returned when an archived document cannot be found in the store.
var ErrArchiveNotFound = errors.New("archive not found")

// ErrInvalidResult is returned when a unit result cannot be encoded as JSON.
var ErrInvalidResult = errors.New("result is not JSON-encodable")
