package parser

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/pub"
)

type markdownParser struct{}

// NewMarkdownParser parses a flat Markdown document. The first level-1
// heading becomes the publication title.
func NewMarkdownParser() PublicationParser { return markdownParser{} }

func (markdownParser) Parse(ctx context.Context, file asset.File, f fetcher.Fetcher, fallbackTitle string, warnings observability.WarningSink) (*pub.Builder, error) {
	links := f.Links()
	if len(links) != 1 {
		return nil, nil
	}
	href := links[0]
	switch strings.ToLower(path.Ext(href)) {
	case ".md", ".markdown":
	default:
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := fetcher.ReadAll(f, href)
	if err != nil {
		return nil, fmt.Errorf("markdown: read %s: %w", href, err)
	}
	title := firstHeading(src)
	if title == "" {
		title = fallbackTitle
		warnings.Warn("markdown: document has no level-1 heading, using fallback",
			observability.String("file", file.Name()))
	}
	manifest := pub.Manifest{
		Metadata:     pub.Metadata{Title: title},
		ReadingOrder: []pub.Link{{Href: href, Type: "text/markdown"}},
	}
	return pub.NewBuilder(manifest, f), nil
}

func firstHeading(src []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				sb.Write(t.Segment.Value(src))
			}
		}
		title = strings.TrimSpace(sb.String())
		return ast.WalkStop, nil
	})
	return title
}
