package parser

import (
	"context"
	"testing"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
)

func TestMarkdownParserTakesFirstHeading(t *testing.T) {
	f := fetcher.NewMapFetcher(map[string][]byte{
		"/story.md": []byte("intro text\n\n# A Modest Proposal\n\n## Section\n\nbody"),
	})
	b, err := NewMarkdownParser().Parse(context.Background(), asset.NewFile("story.md"), f, "fallback", observability.NopSink{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b == nil {
		t.Fatalf("markdown not recognized")
	}
	if got := b.Manifest.Metadata.Title; got != "A Modest Proposal" {
		t.Fatalf("title = %q", got)
	}
	if len(b.Manifest.ReadingOrder) != 1 || b.Manifest.ReadingOrder[0].Type != "text/markdown" {
		t.Fatalf("reading order = %+v", b.Manifest.ReadingOrder)
	}
}

func TestMarkdownParserFallbackTitleWarns(t *testing.T) {
	var warnings observability.CollectingSink
	f := fetcher.NewMapFetcher(map[string][]byte{"/notes.md": []byte("no headings here")})
	b, err := NewMarkdownParser().Parse(context.Background(), asset.NewFile("notes.md"), f, "notes.md", &warnings)
	if err != nil {
		t.Fatal(err)
	}
	if b.Manifest.Metadata.Title != "notes.md" {
		t.Fatalf("title = %q", b.Manifest.Metadata.Title)
	}
	if len(warnings.Warnings()) != 1 {
		t.Fatalf("warnings = %+v", warnings.Warnings())
	}
}

func TestMarkdownParserDeclines(t *testing.T) {
	cases := []map[string][]byte{
		{"/story.txt": []byte("# Not markdown by extension")},
		{"/a.md": []byte("# A"), "/b.md": []byte("# B")},
	}
	for _, resources := range cases {
		b, err := NewMarkdownParser().Parse(context.Background(), asset.NewFile("x"), fetcher.NewMapFetcher(resources), "t", observability.NopSink{})
		if err != nil || b != nil {
			t.Fatalf("expected decline for %v, got builder=%v err=%v", resources, b, err)
		}
	}
}
