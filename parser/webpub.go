package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/pub"
)

const webpubManifestPath = "/manifest.json"

type webpubParser struct{}

// NewWebPubParser parses packaged web publications described by a
// manifest.json entry.
func NewWebPubParser() PublicationParser { return webpubParser{} }

type wpManifest struct {
	Metadata struct {
		Title      string `json:"title"`
		Identifier string `json:"identifier"`
		Language   string `json:"language"`
	} `json:"metadata"`
	ReadingOrder []wpLink `json:"readingOrder"`
	Resources    []wpLink `json:"resources"`
}

type wpLink struct {
	Href   string `json:"href"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (webpubParser) Parse(ctx context.Context, file asset.File, f fetcher.Fetcher, fallbackTitle string, warnings observability.WarningSink) (*pub.Builder, error) {
	data, err := fetcher.ReadAll(f, webpubManifestPath)
	if errors.Is(err, fetcher.ErrResourceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("webpub: read manifest: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wp wpManifest
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, fmt.Errorf("webpub: parse manifest: %w", err)
	}
	if len(wp.ReadingOrder) == 0 {
		return nil, errors.New("webpub: manifest has no reading order")
	}

	manifest := pub.Manifest{}
	manifest.Metadata.Title = wp.Metadata.Title
	if manifest.Metadata.Title == "" {
		manifest.Metadata.Title = fallbackTitle
		warnings.Warn("webpub: manifest has no title, using fallback",
			observability.String("file", file.Name()))
	}
	manifest.Metadata.Identifier = wp.Metadata.Identifier
	manifest.Metadata.Language = wp.Metadata.Language
	manifest.ReadingOrder = toLinks(wp.ReadingOrder)
	manifest.Resources = toLinks(wp.Resources)
	return pub.NewBuilder(manifest, f), nil
}

func toLinks(in []wpLink) []pub.Link {
	var out []pub.Link
	for _, l := range in {
		href := "/" + strings.TrimPrefix(l.Href, "/")
		mediaType := l.Type
		if mediaType == "" {
			mediaType = mediaTypeOf(href)
		}
		out = append(out, pub.Link{
			Href:   href,
			Type:   mediaType,
			Title:  l.Title,
			Width:  l.Width,
			Height: l.Height,
		})
	}
	return out
}
