package parser

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/pub"
)

const (
	epubMimetype      = "application/epub+zip"
	epubContainerPath = "/META-INF/container.xml"
)

type epubParser struct{}

// NewEPUBParser parses EPUB 2 and 3 containers. Recognition looks for the
// mimetype entry or the OCF container descriptor.
func NewEPUBParser() PublicationParser { return epubParser{} }

type ocfContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Metadata struct {
		Titles      []string `xml:"title"`
		Identifiers []string `xml:"identifier"`
		Languages   []string `xml:"language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

func (epubParser) Parse(ctx context.Context, file asset.File, f fetcher.Fetcher, fallbackTitle string, warnings observability.WarningSink) (*pub.Builder, error) {
	if !recognizeEPUB(f) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fetcher.ReadAll(f, epubContainerPath)
	if err != nil {
		return nil, fmt.Errorf("epub: read container descriptor: %w", err)
	}
	var container ocfContainer
	if err := xml.Unmarshal(data, &container); err != nil {
		return nil, fmt.Errorf("epub: parse container descriptor: %w", err)
	}
	if len(container.Rootfiles) == 0 {
		return nil, fmt.Errorf("epub: container descriptor lists no rootfile")
	}
	opfPath := "/" + strings.TrimPrefix(container.Rootfiles[0].FullPath, "/")

	opfData, err := fetcher.ReadAll(f, opfPath)
	if err != nil {
		return nil, fmt.Errorf("epub: read package document %s: %w", opfPath, err)
	}
	var pkg opfPackage
	if err := xml.Unmarshal(opfData, &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse package document: %w", err)
	}

	manifest := pub.Manifest{}
	if len(pkg.Metadata.Titles) > 0 && pkg.Metadata.Titles[0] != "" {
		manifest.Metadata.Title = pkg.Metadata.Titles[0]
	} else {
		manifest.Metadata.Title = fallbackTitle
		warnings.Warn("epub: package has no title, using fallback",
			observability.String("file", file.Name()))
	}
	if len(pkg.Metadata.Identifiers) > 0 {
		manifest.Metadata.Identifier = pkg.Metadata.Identifiers[0]
	}
	if len(pkg.Metadata.Languages) > 0 {
		manifest.Metadata.Language = pkg.Metadata.Languages[0]
	}

	opfDir := path.Dir(opfPath)
	items := make(map[string]pub.Link, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		// Hrefs in the package document are percent-encoded; entry names
		// in the container are not.
		href := item.Href
		if decoded, err := url.PathUnescape(href); err == nil {
			href = decoded
		}
		link := pub.Link{
			Href: path.Join(opfDir, href),
			Type: item.MediaType,
		}
		if link.Type == "" {
			link.Type = mediaTypeOf(link.Href)
		}
		items[item.ID] = link
	}

	inSpine := make(map[string]bool, len(pkg.Spine.ItemRefs))
	for _, ref := range pkg.Spine.ItemRefs {
		link, ok := items[ref.IDRef]
		if !ok {
			warnings.Warn("epub: spine references unknown manifest item",
				observability.String("idref", ref.IDRef))
			continue
		}
		manifest.ReadingOrder = append(manifest.ReadingOrder, link)
		inSpine[ref.IDRef] = true
	}
	if len(manifest.ReadingOrder) == 0 {
		return nil, errors.New("epub: spine is empty")
	}
	for _, item := range pkg.Manifest.Items {
		if !inSpine[item.ID] {
			manifest.Resources = append(manifest.Resources, items[item.ID])
		}
	}
	return pub.NewBuilder(manifest, f), nil
}

func recognizeEPUB(f fetcher.Fetcher) bool {
	if data, err := fetcher.ReadAll(f, "/mimetype"); err == nil {
		return strings.TrimSpace(string(data)) == epubMimetype
	}
	if r, err := f.Get(epubContainerPath); err == nil {
		r.Close()
		return true
	}
	return false
}
