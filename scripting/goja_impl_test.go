package scripting

import (
	"context"
	"testing"

	"github.com/wudi/pubkit/pub"
)

func TestTransformRewritesMetadata(t *testing.T) {
	engine := NewEngine()
	transform, err := engine.Transform(context.Background(), `
		publication.title = publication.title.toUpperCase();
		publication.language = "en";
	`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	b := pub.NewBuilder(pub.Manifest{Metadata: pub.Metadata{Title: "moby dick"}}, nil)
	b.Apply(transform)
	if b.Manifest.Metadata.Title != "MOBY DICK" {
		t.Fatalf("title = %q", b.Manifest.Metadata.Title)
	}
	if b.Manifest.Metadata.Language != "en" {
		t.Fatalf("language = %q", b.Manifest.Metadata.Language)
	}
}

func TestTransformReadsPageCount(t *testing.T) {
	transform, err := NewEngine().Transform(context.Background(), `
		publication.title = "pages: " + publication.pageCount;
	`)
	if err != nil {
		t.Fatal(err)
	}
	b := pub.NewBuilder(pub.Manifest{
		ReadingOrder: []pub.Link{{Href: "/1"}, {Href: "/2"}},
	}, nil)
	b.Apply(transform)
	if b.Manifest.Metadata.Title != "pages: 2" {
		t.Fatalf("title = %q", b.Manifest.Metadata.Title)
	}
}

func TestTransformCompileError(t *testing.T) {
	if _, err := NewEngine().Transform(context.Background(), "this is {{ not js"); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestTransformReusableAcrossBuilders(t *testing.T) {
	transform, err := NewEngine().Transform(context.Background(), `publication.title += "!"`)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"a!", "b!"} {
		b := pub.NewBuilder(pub.Manifest{Metadata: pub.Metadata{Title: want[:1]}}, nil)
		b.Apply(transform)
		if b.Manifest.Metadata.Title != want {
			t.Fatalf("title = %q, want %q", b.Manifest.Metadata.Title, want)
		}
	}
}

func TestTransformCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transform, err := NewEngine().Transform(ctx, `publication.title = "changed"`)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	b := pub.NewBuilder(pub.Manifest{Metadata: pub.Metadata{Title: "orig"}}, nil)
	b.Apply(transform)
	if b.Manifest.Metadata.Title != "orig" {
		t.Fatalf("cancelled transform mutated builder: %q", b.Manifest.Metadata.Title)
	}
}
