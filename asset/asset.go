// Package asset references publication files on disk.
package asset

import (
	"net/url"
	"os"
	"path/filepath"
)

// File is a read-only reference to a publication on the local filesystem.
// It carries no open handle; stages open the content they need through a
// fetcher resolved from it.
type File struct {
	path string
	name string
}

// NewFile references the file at path. The display name defaults to the
// base name of the path.
func NewFile(path string) File {
	return File{path: path, name: filepath.Base(path)}
}

// NewNamedFile references the file at path under an explicit display name.
func NewNamedFile(path, name string) File {
	return File{path: path, name: name}
}

func (f File) Path() string { return f.path }

// Name is the human-readable display name, used as the fallback publication
// title when a format supplies none.
func (f File) Name() string { return f.name }

// Exists reports whether the referenced path is reachable.
func (f File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// URL locates the file as a file:// URL with an absolute path.
func (f File) URL() *url.URL {
	abs, err := filepath.Abs(f.path)
	if err != nil {
		abs = f.path
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
}
