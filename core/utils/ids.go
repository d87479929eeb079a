package utils

import (
	"github.com/gofrs/uuid/v5"
	"github.com/oklog/ulid/v2"
)

// NewEntityID returns a lexicographically sortable opaque id for stored
// entities.
func NewEntityID() string {
	return ulid.Make().String()
}

// NewRequestID returns the per-call opaque id carried in response metadata.
func NewRequestID() string {
	return uuid.Must(uuid.NewV4()).String()
}
