package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

type zipOpener struct{}

// NewZipOpener returns the default container opener, reading zip packages.
func NewZipOpener() Opener { return zipOpener{} }

func (zipOpener) Open(ctx context.Context, path string, credentials string) (Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("archive: stat %s: %w", path, err)
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		// Anything that is not a readable zip degrades to flat access.
		return nil, fmt.Errorf("%w: %s", ErrNotArchive, path)
	}
	a := &zipArchive{file: f, reader: r}
	if err := a.checkProtection(credentials); err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

type zipArchive struct {
	file   *os.File
	reader *zip.Reader
}

// checkProtection rejects the archive when it declares a protection manifest
// the supplied credentials cannot satisfy. Unlocking the content itself is
// the protection layer's job.
func (a *zipArchive) checkProtection(credentials string) error {
	entry, err := a.Entry(ProtectionManifestPath)
	if errors.Is(err, ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	data, err := entry.Read(0, -1)
	if err != nil {
		return err
	}
	manifest, err := ParseProtectionManifest(data)
	if err != nil {
		return err
	}
	if !manifest.VerifyCredentials(credentials) {
		return ErrInvalidCredentials
	}
	return nil
}

func (a *zipArchive) Entries() []Entry {
	var entries []Entry
	for _, f := range a.reader.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		entries = append(entries, &zipEntry{file: f})
	}
	return entries
}

func (a *zipArchive) Entry(path string) (Entry, error) {
	path = strings.TrimPrefix(path, "/")
	for _, f := range a.reader.File {
		if f.Name == path {
			return &zipEntry{file: f}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, path)
}

func (a *zipArchive) Close() error { return a.file.Close() }

type zipEntry struct {
	file *zip.File
}

func (e *zipEntry) Path() string            { return e.file.Name }
func (e *zipEntry) Length() int64           { return int64(e.file.UncompressedSize64) }
func (e *zipEntry) CompressedLength() int64 { return int64(e.file.CompressedSize64) }

func (e *zipEntry) Read(start, end int64) ([]byte, error) {
	length := e.Length()
	if end < 0 || end > length {
		end = length
	}
	if start < 0 || start > end {
		return nil, fmt.Errorf("archive: invalid range [%d, %d) for %s", start, end, e.file.Name)
	}
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: open entry %s: %w", e.file.Name, err)
	}
	defer rc.Close()
	// Entries decompress as streams; skip to start rather than seeking.
	if start > 0 {
		if _, err := io.CopyN(io.Discard, rc, start); err != nil {
			return nil, fmt.Errorf("archive: skip to %d in %s: %w", start, e.file.Name, err)
		}
	}
	buf := make([]byte, end-start)
	if _, err := io.ReadFull(rc, buf); err != nil {
		return nil, fmt.Errorf("archive: read entry %s: %w", e.file.Name, err)
	}
	return buf, nil
}
