package pub

import (
	"errors"

	"github.com/wudi/pubkit/fetcher"
)

// Transform adjusts a builder before it is finalized. Transforms compose:
// applying T then U is equivalent to applying the single transform U∘T.
type Transform func(*Builder)

// Builder accumulates a publication under construction. It has a single
// owner at any time and must not be used after Build.
type Builder struct {
	Manifest Manifest
	Fetcher  fetcher.Fetcher
	built    bool
}

func NewBuilder(manifest Manifest, f fetcher.Fetcher) *Builder {
	return &Builder{Manifest: manifest, Fetcher: f}
}

// Apply runs a transform over the builder. A nil transform is a no-op.
func (b *Builder) Apply(t Transform) {
	if t != nil {
		t(b)
	}
}

// Build finalizes the builder into an immutable Publication, consuming it.
func (b *Builder) Build() (*Publication, error) {
	if b.built {
		return nil, errors.New("pub: builder already built")
	}
	b.built = true
	return &Publication{manifest: b.Manifest, fetcher: b.Fetcher}, nil
}

// Publication is a fully materialized, immutable publication.
type Publication struct {
	manifest Manifest
	fetcher  fetcher.Fetcher
}

func (p *Publication) Manifest() Manifest { return p.manifest }

// Get reads a resource of the publication by href.
func (p *Publication) Get(href string) (fetcher.Resource, error) {
	if p.fetcher == nil {
		return nil, fetcher.ErrResourceNotFound
	}
	return p.fetcher.Get(href)
}

// Close releases the underlying content access.
func (p *Publication) Close() error {
	if p.fetcher == nil {
		return nil
	}
	return p.fetcher.Close()
}
