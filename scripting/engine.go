// Package scripting lets callers adjust a publication being opened with a
// small script instead of compiled-in transform code.
package scripting

import (
	"context"

	"github.com/wudi/pubkit/pub"
)

// Engine compiles scripts into builder transforms.
type Engine interface {
	// Transform compiles a script into a publication transform. The script
	// sees a `publication` object with title, identifier and language
	// accessors and a read-only pageCount.
	Transform(ctx context.Context, script string) (pub.Transform, error)
}
