// Package fetcher gives read access to the logical resources of a
// publication, whether packaged in a container or stored as a single file.
package fetcher

import (
	"errors"
	"fmt"
)

var ErrResourceNotFound = errors.New("fetcher: resource not found")

// Resource reads one logical resource. Hrefs are absolute within the
// publication and start with a slash.
type Resource interface {
	Href() string
	Length() (int64, error)

	// Read returns the byte range [start, end); end < 0 reads to the end.
	Read(start, end int64) ([]byte, error)
	Close() error
}

// Fetcher lists and reads the resources of one publication. A fetcher has a
// single owner; ownership moves along the opening pipeline and the final
// publication closes it.
type Fetcher interface {
	Links() []string
	Get(href string) (Resource, error)
	Close() error
}

// ReadAll reads a whole resource by href and closes it.
func ReadAll(f Fetcher, href string) ([]byte, error) {
	r, err := f.Get(href)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Read(0, -1)
}

func checkRange(start, end, length int64) (int64, int64, error) {
	if end < 0 || end > length {
		end = length
	}
	if start < 0 || start > end {
		return 0, 0, fmt.Errorf("fetcher: invalid range [%d, %d)", start, end)
	}
	return start, end, nil
}
