package parser

import (
	"context"
	"testing"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
)

func TestWebPubParserParsesManifest(t *testing.T) {
	f := fetcher.NewMapFetcher(map[string][]byte{
		"/manifest.json": []byte(`{
			"metadata": {"title": "Flatland", "identifier": "urn:isbn:123", "language": "en"},
			"readingOrder": [
				{"href": "ch1.html", "type": "text/html"},
				{"href": "/ch2.html"}
			],
			"resources": [{"href": "cover.jpg", "width": 600, "height": 800}]
		}`),
		"/ch1.html":  []byte("<html/>"),
		"/ch2.html":  []byte("<html/>"),
		"/cover.jpg": []byte("img"),
	})
	b, err := NewWebPubParser().Parse(context.Background(), asset.NewFile("b.zip"), f, "fallback", observability.NopSink{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b == nil {
		t.Fatalf("webpub not recognized")
	}
	m := b.Manifest
	if m.Metadata.Title != "Flatland" {
		t.Fatalf("title = %q", m.Metadata.Title)
	}
	if len(m.ReadingOrder) != 2 || m.ReadingOrder[0].Href != "/ch1.html" || m.ReadingOrder[1].Href != "/ch2.html" {
		t.Fatalf("reading order = %+v", m.ReadingOrder)
	}
	// Missing type falls back to the extension.
	if m.ReadingOrder[1].Type != "text/html" {
		t.Fatalf("inferred type = %q", m.ReadingOrder[1].Type)
	}
	if len(m.Resources) != 1 || m.Resources[0].Width != 600 || m.Resources[0].Height != 800 {
		t.Fatalf("resources = %+v", m.Resources)
	}
}

func TestWebPubParserDeclinesWithoutManifest(t *testing.T) {
	f := fetcher.NewMapFetcher(map[string][]byte{"/ch1.html": []byte("<html/>")})
	b, err := NewWebPubParser().Parse(context.Background(), asset.NewFile("b.zip"), f, "t", observability.NopSink{})
	if err != nil || b != nil {
		t.Fatalf("expected decline, got builder=%v err=%v", b, err)
	}
}

func TestWebPubParserMalformedManifestIsFatal(t *testing.T) {
	f := fetcher.NewMapFetcher(map[string][]byte{"/manifest.json": []byte("{oops")})
	if _, err := NewWebPubParser().Parse(context.Background(), asset.NewFile("b.zip"), f, "t", observability.NopSink{}); err == nil {
		t.Fatalf("malformed manifest should be a hard error")
	}
}

func TestWebPubParserEmptyReadingOrderIsFatal(t *testing.T) {
	f := fetcher.NewMapFetcher(map[string][]byte{"/manifest.json": []byte(`{"metadata":{"title":"x"}}`)})
	if _, err := NewWebPubParser().Parse(context.Background(), asset.NewFile("b.zip"), f, "t", observability.NopSink{}); err == nil {
		t.Fatalf("empty reading order should be a hard error")
	}
}

func TestWebPubParserTitleFallbackWarns(t *testing.T) {
	var warnings observability.CollectingSink
	f := fetcher.NewMapFetcher(map[string][]byte{
		"/manifest.json": []byte(`{"readingOrder":[{"href":"ch1.html"}]}`),
	})
	b, err := NewWebPubParser().Parse(context.Background(), asset.NewFile("b.zip"), f, "Untitled", &warnings)
	if err != nil {
		t.Fatal(err)
	}
	if b.Manifest.Metadata.Title != "Untitled" {
		t.Fatalf("title = %q", b.Manifest.Metadata.Title)
	}
	if len(warnings.Warnings()) != 1 {
		t.Fatalf("warnings = %+v", warnings.Warnings())
	}
}
