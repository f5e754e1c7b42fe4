// Command pubinfo opens publications and prints their metadata.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/wudi/pubkit/asset"
	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/protection"
	"github.com/wudi/pubkit/scripting"
	"github.com/wudi/pubkit/streamer"
)

type options struct {
	password string
	script   string
	parallel int
	verbose  bool
	files    []string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pubinfo: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pubinfo: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pubinfo [flags] <file>...\n")
		flag.PrintDefaults()
	}
	password := flag.String("password", "", "Passphrase for protected publications")
	script := flag.String("script", "", "Path to a JS transform applied to every opened publication")
	parallel := flag.Int("parallel", 4, "Maximum publications opened concurrently")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	opts.password = *password
	opts.script = *script
	opts.parallel = *parallel
	opts.verbose = *verbose
	opts.files = flag.Args()
	if len(opts.files) == 0 {
		return opts, fmt.Errorf("no input files")
	}
	if opts.parallel < 1 {
		return opts, fmt.Errorf("-parallel must be at least 1")
	}
	return opts, nil
}

type summary struct {
	File       string   `json:"file"`
	Title      string   `json:"title"`
	Identifier string   `json:"identifier,omitempty"`
	Language   string   `json:"language,omitempty"`
	Pages      int      `json:"pages"`
	Protected  bool     `json:"protected"`
	Warnings   []string `json:"warnings,omitempty"`
}

func run(opts options) error {
	ctx := context.Background()
	logger := newLogger(opts.verbose)

	cfg := streamer.Config{
		Protections: []protection.ContentProtection{
			protection.NewPassphraseScheme(protection.WithLogger(logger)),
		},
		Logger: logger,
	}
	if opts.script != "" {
		src, err := os.ReadFile(opts.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		transform, err := scripting.NewEngineWithLogger(logger).Transform(ctx, string(src))
		if err != nil {
			return err
		}
		cfg.OnCreatePublication = transform
	}
	s := streamer.New(cfg)

	var mu sync.Mutex
	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.parallel)
	for _, path := range opts.files {
		path := path
		g.Go(func() error {
			var warnings observability.CollectingSink
			p, err := s.Open(ctx, asset.NewFile(path), false, "", opts.password, &warnings)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			defer p.Close()

			m := p.Manifest()
			sum := summary{
				File:      path,
				Title:     m.Metadata.Title,
				Pages:     len(m.ReadingOrder),
				Protected: m.Metadata.Protection != nil,
			}
			sum.Identifier = m.Metadata.Identifier
			sum.Language = m.Metadata.Language
			for _, w := range warnings.Warnings() {
				sum.Warnings = append(sum.Warnings, w.Message)
			}
			mu.Lock()
			defer mu.Unlock()
			return out.Encode(sum)
		})
	}
	return g.Wait()
}

// charmLogger adapts charmbracelet/log to the library's Logger interface.
type charmLogger struct {
	l *charmlog.Logger
}

func newLogger(verbose bool) observability.Logger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})
	if verbose {
		l.SetLevel(charmlog.DebugLevel)
	} else {
		l.SetLevel(charmlog.WarnLevel)
	}
	return charmLogger{l: l}
}

func kv(fields []observability.Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key(), f.Value())
	}
	return out
}

func (c charmLogger) Debug(msg string, fields ...observability.Field) { c.l.Debug(msg, kv(fields)...) }
func (c charmLogger) Info(msg string, fields ...observability.Field)  { c.l.Info(msg, kv(fields)...) }
func (c charmLogger) Warn(msg string, fields ...observability.Field)  { c.l.Warn(msg, kv(fields)...) }
func (c charmLogger) Error(msg string, fields ...observability.Field) { c.l.Error(msg, kv(fields)...) }

func (c charmLogger) With(fields ...observability.Field) observability.Logger {
	return charmLogger{l: c.l.With(kv(fields)...)}
}
