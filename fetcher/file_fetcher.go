package fetcher

import (
	"fmt"
	"io"
	"os"
)

// fileFetcher treats one on-disk file as a single flat resource.
type fileFetcher struct {
	href string
	path string
}

// NewFileFetcher serves the file at path as the single resource href.
func NewFileFetcher(href, path string) Fetcher {
	return &fileFetcher{href: href, path: path}
}

func (f *fileFetcher) Links() []string { return []string{f.href} }

func (f *fileFetcher) Get(href string) (Resource, error) {
	if href != f.href {
		return nil, ErrResourceNotFound
	}
	return &fileResource{href: f.href, path: f.path}, nil
}

func (f *fileFetcher) Close() error { return nil }

type fileResource struct {
	href string
	path string
}

func (r *fileResource) Href() string { return r.href }

func (r *fileResource) Length() (int64, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return 0, fmt.Errorf("fetcher: stat %s: %w", r.path, err)
	}
	return info.Size(), nil
}

func (r *fileResource) Read(start, end int64) ([]byte, error) {
	length, err := r.Length()
	if err != nil {
		return nil, err
	}
	start, end, err = checkRange(start, end, length)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("fetcher: open %s: %w", r.path, err)
	}
	defer f.Close()
	buf := make([]byte, end-start)
	// The file may shrink between Stat and the read; a short count is
	// returned as-is rather than padded with zeroes.
	n, err := f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("fetcher: read %s: %w", r.path, err)
	}
	return buf[:n], nil
}

func (r *fileResource) Close() error { return nil }
