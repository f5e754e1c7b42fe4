package pub

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/pubkit/fetcher"
)

func TestBuilderTransformOrder(t *testing.T) {
	appendToTitle := func(suffix string) Transform {
		return func(b *Builder) { b.Manifest.Metadata.Title += suffix }
	}

	b := NewBuilder(Manifest{Metadata: Metadata{Title: "t"}}, nil)
	b.Apply(appendToTitle("-1"))
	b.Apply(appendToTitle("-2"))
	p, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Manifest().Metadata.Title; got != "t-1-2" {
		t.Fatalf("title = %q, want %q", got, "t-1-2")
	}

	// Non-commuting transforms must produce order-dependent results.
	b2 := NewBuilder(Manifest{Metadata: Metadata{Title: "t"}}, nil)
	b2.Apply(appendToTitle("-2"))
	b2.Apply(appendToTitle("-1"))
	p2, err := b2.Build()
	if err != nil {
		t.Fatal(err)
	}
	if p2.Manifest().Metadata.Title == p.Manifest().Metadata.Title {
		t.Fatalf("swapped transform order produced identical publication")
	}
}

func TestBuilderNilTransform(t *testing.T) {
	b := NewBuilder(Manifest{}, nil)
	b.Apply(nil)
	if _, err := b.Build(); err != nil {
		t.Fatal(err)
	}
}

func TestBuilderBuildOnce(t *testing.T) {
	b := NewBuilder(Manifest{}, nil)
	if _, err := b.Build(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatalf("second Build should fail")
	}
}

func TestPublicationGetDelegatesToFetcher(t *testing.T) {
	f := fetcher.NewMapFetcher(map[string][]byte{"/ch1.txt": []byte("hi")})
	p, err := NewBuilder(Manifest{}, f).Build()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	r, err := p.Get("/ch1.txt")
	if err != nil {
		t.Fatal(err)
	}
	data, err := r.Read(0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hi" {
		t.Fatalf("read = %q", data)
	}
}

func TestLinkWithHref(t *testing.T) {
	m := Manifest{
		ReadingOrder: []Link{{Href: "/ch1.xhtml", Type: "application/xhtml+xml"}},
		Resources:    []Link{{Href: "/cover.jpg", Type: "image/jpeg"}},
	}
	got, ok := m.LinkWithHref("/cover.jpg")
	if !ok {
		t.Fatalf("cover not found")
	}
	if diff := cmp.Diff(Link{Href: "/cover.jpg", Type: "image/jpeg"}, got); diff != "" {
		t.Fatalf("link mismatch (-want +got):\n%s", diff)
	}
	if _, ok := m.LinkWithHref("/nope"); ok {
		t.Fatalf("unexpected match")
	}
}
