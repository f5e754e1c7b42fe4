package parser

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/pub"
)

type htmlParser struct{}

// NewHTMLParser parses a flat HTML document, taking the publication title
// from the document head.
func NewHTMLParser() PublicationParser { return htmlParser{} }

func (htmlParser) Parse(ctx context.Context, file asset.File, f fetcher.Fetcher, fallbackTitle string, warnings observability.WarningSink) (*pub.Builder, error) {
	links := f.Links()
	if len(links) != 1 {
		return nil, nil
	}
	href := links[0]
	mediaType := ""
	switch strings.ToLower(path.Ext(href)) {
	case ".html", ".htm":
		mediaType = "text/html"
	case ".xhtml":
		mediaType = "application/xhtml+xml"
	default:
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := fetcher.ReadAll(f, href)
	if err != nil {
		return nil, fmt.Errorf("html: read %s: %w", href, err)
	}
	title := documentTitle(src)
	if title == "" {
		title = fallbackTitle
		warnings.Warn("html: document has no title element, using fallback",
			observability.String("file", file.Name()))
	}
	manifest := pub.Manifest{
		Metadata:     pub.Metadata{Title: title},
		ReadingOrder: []pub.Link{{Href: href, Type: mediaType}},
	}
	return pub.NewBuilder(manifest, f), nil
}

func documentTitle(src []byte) string {
	z := html.NewTokenizer(bytes.NewReader(src))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}
