package fetcher

import "sort"

// mapFetcher serves in-memory resources, mainly for programmatic
// publications and tests.
type mapFetcher struct {
	resources map[string][]byte
	links     []string
}

// NewMapFetcher serves the given resources. Keys are hrefs and must start
// with a slash. Links are listed in sorted order.
func NewMapFetcher(resources map[string][]byte) Fetcher {
	links := make([]string, 0, len(resources))
	for href := range resources {
		links = append(links, href)
	}
	sort.Strings(links)
	return &mapFetcher{resources: resources, links: links}
}

func (f *mapFetcher) Links() []string { return f.links }

func (f *mapFetcher) Get(href string) (Resource, error) {
	data, ok := f.resources[href]
	if !ok {
		return nil, ErrResourceNotFound
	}
	return &bytesResource{href: href, data: data}, nil
}

func (f *mapFetcher) Close() error { return nil }

type bytesResource struct {
	href string
	data []byte
}

func (r *bytesResource) Href() string           { return r.href }
func (r *bytesResource) Length() (int64, error) { return int64(len(r.data)), nil }
func (r *bytesResource) Close() error           { return nil }

func (r *bytesResource) Read(start, end int64) ([]byte, error) {
	start, end, err := checkRange(start, end, int64(len(r.data)))
	if err != nil {
		return nil, err
	}
	out := make([]byte, end-start)
	copy(out, r.data[start:end])
	return out, nil
}
