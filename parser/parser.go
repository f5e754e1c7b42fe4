// Package parser turns a publication's raw resources into a manifest, one
// plugin per supported format.
package parser

import (
	"context"
	"path"
	"strings"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/pub"
)

// PublicationParser attempts to parse one format.
//
// Parse returns (nil, nil) when the content is not in this parser's format;
// the next parser in the chain is then tried. An error after the format was
// recognized is fatal for the whole opening operation.
type PublicationParser interface {
	Parse(ctx context.Context, file asset.File, f fetcher.Fetcher, fallbackTitle string, warnings observability.WarningSink) (*pub.Builder, error)
}

// DefaultParsers returns the supported formats in priority order. Container
// formats with explicit markers come before shape-based recognition.
func DefaultParsers() []PublicationParser {
	return []PublicationParser{
		NewEPUBParser(),
		NewWebPubParser(),
		NewComicParser(),
		NewMarkdownParser(),
		NewHTMLParser(),
	}
}

var mediaTypes = map[string]string{
	".xhtml":    "application/xhtml+xml",
	".html":     "text/html",
	".htm":      "text/html",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".css":      "text/css",
	".js":       "text/javascript",
	".ncx":      "application/x-dtbncx+xml",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".png":      "image/png",
	".gif":      "image/gif",
	".webp":     "image/webp",
	".bmp":      "image/bmp",
	".tif":      "image/tiff",
	".tiff":     "image/tiff",
}

func mediaTypeOf(href string) string {
	return mediaTypes[strings.ToLower(path.Ext(href))]
}

func isImage(href string) bool {
	return strings.HasPrefix(mediaTypeOf(href), "image/")
}
