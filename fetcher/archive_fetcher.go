package fetcher

import (
	"errors"
	"strings"

	"github.com/wudi/pubkit/archive"
)

// archiveFetcher exposes the entries of a container as resources.
type archiveFetcher struct {
	archive archive.Archive
}

func NewArchiveFetcher(a archive.Archive) Fetcher {
	return &archiveFetcher{archive: a}
}

func (f *archiveFetcher) Links() []string {
	entries := f.archive.Entries()
	links := make([]string, 0, len(entries))
	for _, e := range entries {
		links = append(links, "/"+e.Path())
	}
	return links
}

func (f *archiveFetcher) Get(href string) (Resource, error) {
	entry, err := f.archive.Entry(strings.TrimPrefix(href, "/"))
	if err != nil {
		if errors.Is(err, archive.ErrEntryNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return &archiveResource{href: href, entry: entry}, nil
}

func (f *archiveFetcher) Close() error { return f.archive.Close() }

type archiveResource struct {
	href  string
	entry archive.Entry
}

func (r *archiveResource) Href() string           { return r.href }
func (r *archiveResource) Length() (int64, error) { return r.entry.Length(), nil }
func (r *archiveResource) Close() error           { return nil }

func (r *archiveResource) Read(start, end int64) ([]byte, error) {
	return r.entry.Read(start, end)
}
