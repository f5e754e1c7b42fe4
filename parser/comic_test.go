package parser

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestComicParserSortsPagesAndProbesDimensions(t *testing.T) {
	f := fetcher.NewMapFetcher(map[string][]byte{
		"/p002.png": pngBytes(t, 10, 20),
		"/p001.png": pngBytes(t, 30, 40),
	})
	b, err := NewComicParser().Parse(context.Background(), asset.NewFile("comic.cbz"), f, "Issue #1", observability.NopSink{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b == nil {
		t.Fatalf("comic not recognized")
	}
	m := b.Manifest
	if m.Metadata.Title != "Issue #1" {
		t.Fatalf("title = %q", m.Metadata.Title)
	}
	if len(m.ReadingOrder) != 2 {
		t.Fatalf("reading order = %+v", m.ReadingOrder)
	}
	if m.ReadingOrder[0].Href != "/p001.png" || m.ReadingOrder[1].Href != "/p002.png" {
		t.Fatalf("pages not sorted: %+v", m.ReadingOrder)
	}
	if m.ReadingOrder[0].Width != 30 || m.ReadingOrder[0].Height != 40 {
		t.Fatalf("dimensions = %+v", m.ReadingOrder[0])
	}
}

func TestComicParserDeclinesMixedContent(t *testing.T) {
	f := fetcher.NewMapFetcher(map[string][]byte{
		"/p001.png": pngBytes(t, 1, 1),
		"/note.txt": []byte("not a page"),
	})
	b, err := NewComicParser().Parse(context.Background(), asset.NewFile("x.zip"), f, "t", observability.NopSink{})
	if err != nil || b != nil {
		t.Fatalf("expected decline, got builder=%v err=%v", b, err)
	}
}

// rangeRecordingFetcher records the end offset of every resource read.
type rangeRecordingFetcher struct {
	inner fetcher.Fetcher
	ends  []int64
}

func (f *rangeRecordingFetcher) Links() []string { return f.inner.Links() }
func (f *rangeRecordingFetcher) Close() error    { return f.inner.Close() }

func (f *rangeRecordingFetcher) Get(href string) (fetcher.Resource, error) {
	r, err := f.inner.Get(href)
	if err != nil {
		return nil, err
	}
	return &rangeRecordingResource{Resource: r, owner: f}, nil
}

type rangeRecordingResource struct {
	fetcher.Resource
	owner *rangeRecordingFetcher
}

func (r *rangeRecordingResource) Read(start, end int64) ([]byte, error) {
	r.owner.ends = append(r.owner.ends, end)
	return r.Resource.Read(start, end)
}

func TestComicParserProbesBoundedPrefix(t *testing.T) {
	rec := &rangeRecordingFetcher{inner: fetcher.NewMapFetcher(map[string][]byte{
		"/p001.png": pngBytes(t, 8, 8),
	})}
	b, err := NewComicParser().Parse(context.Background(), asset.NewFile("comic.cbz"), rec, "t", observability.NopSink{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.Manifest.ReadingOrder[0].Width != 8 || b.Manifest.ReadingOrder[0].Height != 8 {
		t.Fatalf("dimensions = %+v", b.Manifest.ReadingOrder[0])
	}
	if len(rec.ends) == 0 {
		t.Fatalf("no page reads recorded")
	}
	for _, end := range rec.ends {
		if end < 0 || end > pageProbeBytes {
			t.Fatalf("page read end = %d, probing must stay bounded", end)
		}
	}
}

func TestComicParserUnreadablePageWarns(t *testing.T) {
	var warnings observability.CollectingSink
	f := fetcher.NewMapFetcher(map[string][]byte{
		"/p001.png": []byte("not really a png"),
	})
	b, err := NewComicParser().Parse(context.Background(), asset.NewFile("comic.cbz"), f, "t", &warnings)
	if err != nil {
		t.Fatalf("probe failure must not be fatal: %v", err)
	}
	if len(b.Manifest.ReadingOrder) != 1 {
		t.Fatalf("page dropped: %+v", b.Manifest.ReadingOrder)
	}
	if len(warnings.Warnings()) != 1 {
		t.Fatalf("warnings = %+v", warnings.Warnings())
	}
}
