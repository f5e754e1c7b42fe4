// Package streamer opens publication files into immutable publications by
// chaining content access, content protection and format parsing, each
// satisfied by the first plugin that applies.
package streamer

import (
	"context"
	"errors"

	"github.com/wudi/pubkit/archive"
	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/fetcher"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/parser"
	"github.com/wudi/pubkit/protection"
	"github.com/wudi/pubkit/pub"
)

// Config assembles a Streamer. The zero value is usable: it opens
// unprotected publications in the default formats.
type Config struct {
	// Parsers are tried in order; defaults to parser.DefaultParsers().
	Parsers []parser.PublicationParser

	// Protections are tried in order before parsing. Empty means
	// publications are treated as unprotected.
	Protections []protection.ContentProtection

	// Opener opens container files; defaults to the zip opener.
	Opener archive.Opener

	// OnCreatePublication runs on every builder after the winning
	// protection's transform and before finalization.
	OnCreatePublication pub.Transform

	// Dispatcher delivers async completions; defaults to InlineDispatcher.
	Dispatcher Dispatcher

	Logger observability.Logger
}

type Streamer struct {
	parsers             []parser.PublicationParser
	protections         []protection.ContentProtection
	opener              archive.Opener
	onCreatePublication pub.Transform
	dispatcher          Dispatcher
	logger              observability.Logger
}

func New(cfg Config) *Streamer {
	s := &Streamer{
		parsers:             cfg.Parsers,
		protections:         cfg.Protections,
		opener:              cfg.Opener,
		onCreatePublication: cfg.OnCreatePublication,
		dispatcher:          cfg.Dispatcher,
		logger:              cfg.Logger,
	}
	if s.parsers == nil {
		s.parsers = parser.DefaultParsers()
	}
	if s.opener == nil {
		s.opener = archive.NewZipOpener()
	}
	if s.dispatcher == nil {
		s.dispatcher = InlineDispatcher()
	}
	if s.logger == nil {
		s.logger = observability.NopLogger{}
	}
	return s
}

// Open materializes the publication at file. It blocks until the pipeline
// resolves and returns either a publication or one of the terminal errors.
//
// Credentials may be empty. The fallback title defaults to the file's
// display name. A nil warnings sink discards diagnostics.
func (s *Streamer) Open(ctx context.Context, file asset.File, allowUserInteraction bool, fallbackTitle, credentials string, warnings observability.WarningSink) (*pub.Publication, error) {
	if warnings == nil {
		warnings = observability.NopSink{}
	}
	if fallbackTitle == "" {
		fallbackTitle = file.Name()
	}
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}

	f, err := s.resolveFetcher(ctx, file, credentials)
	if err != nil {
		return nil, err
	}

	protected, err := s.openProtections(ctx, file, f, allowUserInteraction, credentials)
	if err != nil {
		f.Close()
		return nil, err
	}
	var protectionTransform pub.Transform
	if protected != nil {
		// The winning protection owns content access from here on.
		file = protected.File
		f = protected.Fetcher
		protectionTransform = protected.OnCreatePublication
	}

	builder, err := s.runParsers(ctx, file, f, fallbackTitle, warnings)
	if err != nil {
		f.Close()
		return nil, err
	}

	builder.Apply(protectionTransform)
	builder.Apply(s.onCreatePublication)
	p, err := builder.Build()
	if err != nil {
		f.Close()
		return nil, err
	}
	s.logger.Info("publication opened",
		observability.String("file", file.Name()),
		observability.String("title", p.Manifest().Metadata.Title))
	return p, nil
}

// OpenAsync runs Open on a background goroutine and delivers the result
// exactly once through the configured dispatcher.
func (s *Streamer) OpenAsync(ctx context.Context, file asset.File, allowUserInteraction bool, fallbackTitle, credentials string, warnings observability.WarningSink, complete func(*pub.Publication, error)) {
	c := newCompletion(s.dispatcher, complete)
	go func() {
		p, err := s.Open(ctx, file, allowUserInteraction, fallbackTitle, credentials, warnings)
		c.resolve(p, err)
	}()
}

// resolveFetcher produces content access for the file: archive-backed when
// the file is a container, flat otherwise. Only a rejected credential is
// fatal; any other archive failure degrades to flat access.
func (s *Streamer) resolveFetcher(ctx context.Context, file asset.File, credentials string) (fetcher.Fetcher, error) {
	if !file.Exists() {
		return nil, ErrNotFound
	}
	a, err := s.opener.Open(ctx, file.Path(), credentials)
	if err == nil {
		s.logger.Debug("opened as archive", observability.String("file", file.Name()))
		return fetcher.NewArchiveFetcher(a), nil
	}
	if errors.Is(err, archive.ErrInvalidCredentials) {
		return nil, ErrIncorrectCredentials
	}
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	s.logger.Debug("not an archive, using flat access",
		observability.String("file", file.Name()),
		observability.Error("cause", err))
	return fetcher.NewFileFetcher("/"+file.Name(), file.Path()), nil
}

// openProtections scans the protection chain. The first scheme returning a
// ProtectedAsset wins; declines move on; an error aborts the whole open.
func (s *Streamer) openProtections(ctx context.Context, file asset.File, f fetcher.Fetcher, allowUserInteraction bool, credentials string) (*protection.ProtectedAsset, error) {
	for _, cp := range s.protections {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		protected, err := cp.Open(ctx, file, f, allowUserInteraction, credentials)
		if err != nil {
			if errors.Is(err, archive.ErrInvalidCredentials) {
				return nil, ErrIncorrectCredentials
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrCancelled
			}
			return nil, err
		}
		if protected != nil {
			s.logger.Info("content protection applied",
				observability.String("file", file.Name()))
			return protected, nil
		}
	}
	return nil, nil
}

// runParsers scans the parser chain. A decline moves on; an error is fatal
// and wrapped as *ParseError; an exhausted chain is an unsupported format.
func (s *Streamer) runParsers(ctx context.Context, file asset.File, f fetcher.Fetcher, fallbackTitle string, warnings observability.WarningSink) (*pub.Builder, error) {
	for _, p := range s.parsers {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		builder, err := p.Parse(ctx, file, f, fallbackTitle, warnings)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrCancelled
			}
			return nil, &ParseError{Cause: err}
		}
		if builder != nil {
			return builder, nil
		}
	}
	return nil, ErrUnsupportedFormat
}
