package parser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sort"
	"strings"

	// Decoders registered for page dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/pub"
)

// Image headers carry the dimensions; probing never needs the whole page.
const pageProbeBytes = 64 * 1024

type comicParser struct{}

// NewComicParser parses image-only containers (CBZ-style comic books).
// Recognition is shape-based: every resource must be an image page.
func NewComicParser() PublicationParser { return comicParser{} }

func (comicParser) Parse(ctx context.Context, file asset.File, f fetcher.Fetcher, fallbackTitle string, warnings observability.WarningSink) (*pub.Builder, error) {
	var pages []string
	for _, href := range f.Links() {
		if strings.HasPrefix(href, "/META-INF/") {
			continue
		}
		if !isImage(href) {
			return nil, nil
		}
		pages = append(pages, href)
	}
	if len(pages) == 0 {
		return nil, nil
	}
	sort.Strings(pages)

	manifest := pub.Manifest{Metadata: pub.Metadata{Title: fallbackTitle}}
	for _, href := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		link := pub.Link{Href: href, Type: mediaTypeOf(href)}
		data, err := readPrefix(f, href, pageProbeBytes)
		if err != nil {
			return nil, fmt.Errorf("comic: read page %s: %w", href, err)
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			link.Width = cfg.Width
			link.Height = cfg.Height
		} else {
			warnings.Warn("comic: cannot probe page dimensions",
				observability.String("href", href),
				observability.Error("cause", err))
		}
		manifest.ReadingOrder = append(manifest.ReadingOrder, link)
	}
	return pub.NewBuilder(manifest, f), nil
}

func readPrefix(f fetcher.Fetcher, href string, n int64) ([]byte, error) {
	r, err := f.Get(href)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Read(0, n)
}
