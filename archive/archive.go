// Package archive provides container access for packaged publications.
package archive

import (
	"context"
	"errors"
)

var (
	// ErrNotArchive reports content that cannot be opened as a container.
	// Callers fall back to flat single-resource access on this error.
	ErrNotArchive = errors.New("archive: not an archive")

	// ErrInvalidCredentials reports a credential rejected by the container's
	// protection manifest. This is the only fatal archive-open error.
	ErrInvalidCredentials = errors.New("archive: invalid credentials")

	ErrEntryNotFound = errors.New("archive: entry not found")
)

// Entry is one logical resource inside a container.
type Entry interface {
	// Path is the entry's path inside the container, without a leading slash.
	Path() string
	Length() int64
	CompressedLength() int64

	// Read returns the byte range [start, end) of the decompressed entry.
	// end < 0 reads to the end of the entry.
	Read(start, end int64) ([]byte, error)
}

type Archive interface {
	Entries() []Entry
	Entry(path string) (Entry, error)
	Close() error
}

// Opener opens a file as a container.
type Opener interface {
	// Open opens the container at path. Credentials may be empty; a container
	// whose protection manifest rejects them fails with ErrInvalidCredentials.
	// Content that is not a container fails with ErrNotArchive.
	Open(ctx context.Context, path string, credentials string) (Archive, error)
}
