package storage

import (
	"errors"
	"fmt"
)

const (
	// JournalDir is the directory the trade journals are kept in.
	JournalDir = "journal"
)

var (
	// DefaultDir is the root of the file storage.
	DefaultDir = "file-storage"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// K is a simplified key for storage
type K struct {
	Pair  string `json:"pair"`
	Label string `json:"label"`
}

func (k K) String() string {
	return fmt.Sprintf("%s/%s", k.Pair, k.Label)
}

// Registry is an append-only store of values.
type Registry interface {
	Put(key K, value interface{}) error
}
