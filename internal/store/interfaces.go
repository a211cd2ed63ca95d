package store

import (
	"context"
	"errors"
)

// Collection names one of the two persisted record sets
type Collection string

const (
	Users Collection = "users"
	Tasks Collection = "tasks"
)

// Collections lists every collection the store manages
var Collections = []Collection{Users, Tasks}

// ErrCollectionNotFound is returned by a Backend when a collection has never been written
var ErrCollectionNotFound = errors.New("collection not found")

// Backend persists whole collections as opaque documents.
// Write must replace the document as a unit: a failed Write leaves the
// previously stored document in place.
type Backend interface {
	Name() string
	Read(ctx context.Context, c Collection) ([]byte, error)
	Write(ctx context.Context, c Collection, document []byte) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
