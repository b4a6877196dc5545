// Package feedio ties the feed model, the dialect registry and the fixer
// pipeline together: it reads remote feeds into a uniform model, normalizes
// them and writes them back out in any registered dialect.
//
// Configure a FeedIo (AddStandard, AddFixer) before sharing it between
// goroutines; reads and formats are safe for concurrent use afterwards.
package feedio

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/lysyi3m/feedio/app/feed"
	"github.com/lysyi3m/feedio/app/fixer"
	"github.com/lysyi3m/feedio/app/formatter"
	"github.com/lysyi3m/feedio/app/reader"
	"github.com/lysyi3m/feedio/app/standard"
)

type FeedIo struct {
	reader   *reader.Reader
	registry *standard.Registry
	fixers   *fixer.Set
	logger   *slog.Logger
}

// New returns a FeedIo with the rss and atom standards and the base fixers
// registered.
func New(client reader.Client, logger *slog.Logger) *FeedIo {
	f := NewBare(client, logger)

	standards := CommonStandards()
	for _, name := range slices.Sorted(maps.Keys(standards)) {
		if err := f.AddStandard(name, standards[name]); err != nil {
			panic(fmt.Sprintf("register %s: %v", name, err))
		}
	}
	for _, fx := range BaseFixers() {
		if err := f.AddFixer(fx); err != nil {
			panic(fmt.Sprintf("register fixer %s: %v", fx.Name(), err))
		}
	}

	return f
}

// NewBare returns a FeedIo with no standard and no fixer registered.
func NewBare(client reader.Client, logger *slog.Logger) *FeedIo {
	if logger == nil {
		logger = slog.Default()
	}
	registry := standard.NewRegistry(logger)

	return &FeedIo{
		reader:   reader.New(client, registry, logger),
		registry: registry,
		fixers:   fixer.NewSet(logger),
		logger:   logger,
	}
}

func CommonStandards() map[string]standard.Standard {
	return map[string]standard.Standard{
		"atom": standard.NewAtom(),
		"rss":  standard.NewRss(),
	}
}

func BaseFixers() []fixer.Fixer {
	return []fixer.Fixer{
		fixer.NewLastModified(),
		fixer.NewPublicID(),
		fixer.NewTitle(),
	}
}

// AddStandard registers s under name, case-insensitively. Once it returns,
// the standard is both resolvable by name and used to parse fetched documents.
func (f *FeedIo) AddStandard(name string, s standard.Standard) error {
	if err := f.registry.Add(name, s); err != nil {
		return fmt.Errorf("failed to add standard: %w", err)
	}
	return nil
}

// AddFixer gives fixer the FeedIo logger and appends it to the pipeline.
func (f *FeedIo) AddFixer(fx fixer.Fixer) error {
	if fx == nil {
		return fmt.Errorf("failed to add fixer: fixer is nil")
	}
	fx.SetLogger(f.logger)
	f.fixers.Add(fx)
	return nil
}

func (f *FeedIo) GetStandard(name string) (standard.Standard, error) {
	return f.registry.Get(name)
}

func (f *FeedIo) Standards() []string {
	return f.registry.Names()
}

// Read fetches url into fd, or into a new feed when fd is nil, then runs the
// fixers. Fixers also run when the server reports the feed as not modified.
func (f *FeedIo) Read(ctx context.Context, url string, fd *feed.Feed, modifiedSince time.Time) (*reader.Result, error) {
	if fd == nil {
		fd = feed.New()
	}

	f.logger.Debug("Read access", "feed_type", fmt.Sprintf("%T", fd), "url", url)
	result, err := f.reader.Read(ctx, url, fd, modifiedSince)
	if err != nil {
		return nil, err
	}

	if err := f.fixers.Correct(result.Feed); err != nil {
		f.logger.Warn("Feed corrected with errors", "url", url, "error", err)
	}

	return result, nil
}

func (f *FeedIo) ReadSince(ctx context.Context, url string, modifiedSince time.Time) (*reader.Result, error) {
	return f.Read(ctx, url, feed.New(), modifiedSince)
}

func (f *FeedIo) Format(fd *feed.Feed, name string) (*formatter.Document, error) {
	f.logger.Debug("Formatting feed", "feed_type", fmt.Sprintf("%T", fd), "format", name)

	s, err := f.GetStandard(name)
	if err != nil {
		return nil, err
	}

	return formatter.New(s, f.logger).ToDocument(fd)
}

func (f *FeedIo) ToRss(fd *feed.Feed) (*formatter.Document, error) {
	return f.Format(fd, "rss")
}

func (f *FeedIo) ToAtom(fd *feed.Feed) (*formatter.Document, error) {
	return f.Format(fd, "atom")
}
