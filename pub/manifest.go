// Package pub holds the publication data model: the manifest assembled by a
// parser, the mutable builder it travels in, and the immutable publication
// the pipeline finally produces.
package pub

// Link references one resource of the publication.
type Link struct {
	Href   string
	Type   string
	Title  string
	Width  int
	Height int
}

// Protection records the scheme that locked the publication's content.
type Protection struct {
	Scheme string
}

type Metadata struct {
	Title      string
	Identifier string
	Language   string
	Protection *Protection
}

// Manifest is the structured description of a publication.
type Manifest struct {
	Metadata     Metadata
	ReadingOrder []Link
	Resources    []Link
}

// LinkWithHref returns the first reading-order or resource link matching href.
func (m Manifest) LinkWithHref(href string) (Link, bool) {
	for _, l := range m.ReadingOrder {
		if l.Href == href {
			return l, true
		}
	}
	for _, l := range m.Resources {
		if l.Href == href {
			return l, true
		}
	}
	return Link{}, false
}
