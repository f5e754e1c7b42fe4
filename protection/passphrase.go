package protection

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"strings"

	"github.com/wudi/pubkit/archive"
	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/pub"
)

// Scheme name stamped on publications unlocked by the passphrase scheme.
const PassphraseScheme = "passphrase"

const manifestHref = "/" + archive.ProtectionManifestPath

// CredentialsProvider supplies a passphrase interactively. It is consulted
// only when the caller allowed user interaction and the supplied credentials
// did not verify.
type CredentialsProvider func(ctx context.Context, file asset.File) (string, bool)

type passphraseProtection struct {
	provider CredentialsProvider
	logger   observability.Logger
}

// PassphraseOption configures the passphrase scheme.
type PassphraseOption func(*passphraseProtection)

func WithCredentialsProvider(p CredentialsProvider) PassphraseOption {
	return func(s *passphraseProtection) { s.provider = p }
}

func WithLogger(l observability.Logger) PassphraseOption {
	return func(s *passphraseProtection) { s.logger = l }
}

// NewPassphraseScheme unlocks containers that declare a protection manifest
// (see archive.ProtectionManifestPath). Files without one are declined.
func NewPassphraseScheme(opts ...PassphraseOption) ContentProtection {
	s := &passphraseProtection{logger: observability.NopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *passphraseProtection) Open(ctx context.Context, file asset.File, f fetcher.Fetcher, allowUserInteraction bool, credentials string) (*ProtectedAsset, error) {
	data, err := fetcher.ReadAll(f, manifestHref)
	if errors.Is(err, fetcher.ErrResourceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("protection: read manifest: %w", err)
	}
	manifest, err := archive.ParseProtectionManifest(data)
	if err != nil {
		return nil, err
	}

	passphrase := credentials
	if !manifest.VerifyCredentials(passphrase) && allowUserInteraction && s.provider != nil {
		if supplied, ok := s.provider(ctx, file); ok {
			passphrase = supplied
		}
	}
	if !manifest.VerifyCredentials(passphrase) {
		// A protected file must never reach the parsers locked, so a
		// credential miss is a failure, not a decline.
		return nil, fmt.Errorf("protection: %s: %w", file.Name(), archive.ErrInvalidCredentials)
	}
	key, err := manifest.DeriveKey(passphrase)
	if err != nil {
		return nil, err
	}
	s.logger.Info("content protection unlocked",
		observability.String("file", file.Name()),
		observability.String("scheme", PassphraseScheme))

	encrypted := make(map[string]bool, len(manifest.Resources))
	for _, path := range manifest.Resources {
		encrypted["/"+strings.TrimPrefix(path, "/")] = true
	}
	return &ProtectedAsset{
		File:    file,
		Fetcher: &decryptingFetcher{inner: f, key: key, encrypted: encrypted},
		OnCreatePublication: func(b *pub.Builder) {
			b.Manifest.Metadata.Protection = &pub.Protection{Scheme: PassphraseScheme}
		},
	}, nil
}

// decryptingFetcher decrypts the entries listed in the protection manifest
// and hides the scheme's own manifest from later stages. Other entries,
// container descriptors under META-INF included, pass through untouched.
type decryptingFetcher struct {
	inner     fetcher.Fetcher
	key       []byte
	encrypted map[string]bool
}

func (f *decryptingFetcher) Links() []string {
	var links []string
	for _, href := range f.inner.Links() {
		if href == manifestHref {
			continue
		}
		links = append(links, href)
	}
	return links
}

func (f *decryptingFetcher) Get(href string) (fetcher.Resource, error) {
	if href == manifestHref {
		return nil, fetcher.ErrResourceNotFound
	}
	r, err := f.inner.Get(href)
	if err != nil {
		return nil, err
	}
	if !f.encrypted[href] {
		return r, nil
	}
	return &decryptedResource{inner: r, key: f.key}, nil
}

func (f *decryptingFetcher) Close() error { return f.inner.Close() }

// decryptedResource decrypts the whole entry, then serves ranges over the
// plaintext. Entries are sealed as nonce || AES-GCM ciphertext.
type decryptedResource struct {
	inner     fetcher.Resource
	key       []byte
	plaintext []byte
}

func (r *decryptedResource) Href() string { return r.inner.Href() }

func (r *decryptedResource) Length() (int64, error) {
	data, err := r.open()
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (r *decryptedResource) Read(start, end int64) ([]byte, error) {
	data, err := r.open()
	if err != nil {
		return nil, err
	}
	if end < 0 || end > int64(len(data)) {
		end = int64(len(data))
	}
	if start < 0 || start > end {
		return nil, fmt.Errorf("protection: invalid range [%d, %d)", start, end)
	}
	out := make([]byte, end-start)
	copy(out, data[start:end])
	return out, nil
}

func (r *decryptedResource) Close() error { return r.inner.Close() }

func (r *decryptedResource) open() ([]byte, error) {
	if r.plaintext != nil {
		return r.plaintext, nil
	}
	sealed, err := r.inner.Read(0, -1)
	if err != nil {
		return nil, err
	}
	plaintext, err := openSealed(r.key, sealed)
	if err != nil {
		return nil, fmt.Errorf("protection: decrypt %s: %w", r.inner.Href(), err)
	}
	r.plaintext = plaintext
	return plaintext, nil
}

func openSealed(key, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("sealed data too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
