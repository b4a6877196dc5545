package standard

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Registry maps case-insensitive names to standards. It also serves as the
// parsing dispatcher: Standards lists adapters in registration order, so a
// name is parseable as soon as it is queryable.
type Registry struct {
	mu        sync.RWMutex
	standards map[string]Standard
	order     []string
	logger    *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		standards: make(map[string]Standard),
		logger:    logger,
	}
}

// Add registers s under name. Registering an existing name replaces the
// previous adapter and keeps its dispatch position.
func (r *Registry) Add(name string, s Standard) error {
	name = strings.ToLower(name)
	if name == "" {
		return errors.New("standard name is empty")
	}
	if s == nil {
		return errors.New("standard is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.standards[name]; ok {
		r.logger.Debug("Replacing registered standard", "name", name)
	} else {
		r.order = append(r.order, name)
	}
	r.standards[name] = s

	return nil
}

func (r *Registry) Get(name string) (Standard, error) {
	key := strings.ToLower(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.standards[key]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return s, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Standards returns a snapshot of the registered adapters in registration order.
func (r *Registry) Standards() []Standard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	standards := make([]Standard, 0, len(r.order))
	for _, name := range r.order {
		standards = append(standards, r.standards[name])
	}
	return standards
}
