// Package protection unlocks protected publications before parsing.
package protection

import (
	"context"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/pub"
)

// ProtectedAsset is the outcome of a successful unlock: content access that
// decrypts transparently, plus an optional adjustment to the publication
// being built.
type ProtectedAsset struct {
	File    asset.File
	Fetcher fetcher.Fetcher

	// OnCreatePublication runs on the builder before any caller-supplied
	// transform. May be nil.
	OnCreatePublication pub.Transform
}

// ContentProtection recognizes and unlocks one protection scheme.
//
// Open returns (nil, nil) when the scheme does not apply to the file; the
// next scheme in the chain is then tried. A non-nil error is fatal for the
// whole opening operation and is never downgraded to "try the next scheme".
type ContentProtection interface {
	Open(ctx context.Context, file asset.File, f fetcher.Fetcher, allowUserInteraction bool, credentials string) (*ProtectedAsset, error)
}
