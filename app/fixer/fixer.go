package fixer

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/lysyi3m/feedio/app/feed"
)

// Fixer corrects or derives fields of a freshly parsed feed in place.
type Fixer interface {
	Name() string
	SetLogger(logger *slog.Logger)
	Correct(f *feed.Feed) error
}

// Base carries the injected logger for fixers that embed it.
type Base struct {
	logger *slog.Logger
}

func (b *Base) SetLogger(logger *slog.Logger) {
	b.logger = logger
}

func (b *Base) Logger() *slog.Logger {
	if b.logger == nil {
		return slog.Default()
	}
	return b.logger
}

// Set runs fixers in the order they were added.
type Set struct {
	mu     sync.RWMutex
	fixers []Fixer
	logger *slog.Logger
}

func NewSet(logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{logger: logger}
}

func (s *Set) Add(fixer Fixer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixers = append(s.fixers, fixer)
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fixers)
}

// Correct applies every fixer to f, each one seeing the work of the previous
// ones. A fixer that fails or panics is skipped: f is restored to its state
// before that fixer and the remaining fixers still run. The failures are
// returned joined.
func (s *Set) Correct(f *feed.Feed) error {
	if f == nil {
		return nil
	}

	s.mu.RLock()
	fixers := slices.Clone(s.fixers)
	s.mu.RUnlock()

	var errs []error
	for _, fixer := range fixers {
		snapshot := f.Clone()
		if err := run(fixer, f); err != nil {
			*f = *snapshot
			s.logger.Warn("Fixer failed, skipping", "fixer", fixer.Name(), "feed", f.Title, "error", err)
			errs = append(errs, fmt.Errorf("fixer %s: %w", fixer.Name(), err))
		}
	}

	return errors.Join(errs...)
}

func run(fixer Fixer, f *feed.Feed) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fixer.Correct(f)
}
