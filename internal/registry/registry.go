// Package registry assigns versions to trained policy artifacts and keeps
// the full version history of every model name.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"survivorrl/internal/model"
	"survivorrl/internal/storage"
)

var (
	ErrNameRequired     = errors.New("model name is required")
	ErrNegativeFileSize = errors.New("model file size must not be negative")
	ErrModelNotFound    = errors.New("model not found")
	ErrVersionNotFound  = errors.New("model version not found")
)

// Clock supplies the process-relative registration time in seconds.
type Clock interface {
	Seconds() float64
}

type ClockFunc func() float64

func (f ClockFunc) Seconds() float64 {
	return f()
}

type Options struct {
	// Clock defaults to seconds elapsed since New.
	Clock Clock
	// Now defaults to time.Now.
	Now func() time.Time
	// Store is optional. When set, history is loaded from it on first use of
	// a name and every new version is saved to it before being returned.
	Store storage.Store
}

type Registration struct {
	Name        string
	Path        string
	Description string
	FileSize    int64
	Annotations model.Annotations
}

type Registry struct {
	clock Clock
	now   func() time.Time
	store storage.Store

	mu       sync.Mutex
	lineages map[string]*lineage
}

// lineage is the ordered version log of one model name.
type lineage struct {
	mu       sync.Mutex
	loaded   bool
	versions []model.ModelMetadata
}

func New(opts Options) *Registry {
	clock := opts.Clock
	if clock == nil {
		start := time.Now()
		clock = ClockFunc(func() float64 { return time.Since(start).Seconds() })
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		clock:    clock,
		now:      now,
		store:    opts.Store,
		lineages: make(map[string]*lineage),
	}
}

// Register records a new version of reg.Name. The first registration of a
// name is version 1; each later one is the previous maximum plus one.
func (r *Registry) Register(ctx context.Context, reg Registration) (model.ModelMetadata, error) {
	name := strings.TrimSpace(reg.Name)
	if name == "" {
		return model.ModelMetadata{}, ErrNameRequired
	}
	if reg.FileSize < 0 {
		return model.ModelMetadata{}, fmt.Errorf("%w: %s has %d bytes", ErrNegativeFileSize, name, reg.FileSize)
	}

	l := r.lineage(name)
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := r.load(ctx, name, l); err != nil {
		return model.ModelMetadata{}, err
	}

	next := 1
	if n := len(l.versions); n > 0 {
		next = l.versions[n-1].Version + 1
	}
	meta := model.ModelMetadata{
		VersionedRecord:  model.CurrentVersion(),
		Name:             name,
		Path:             reg.Path,
		Version:          next,
		Description:      reg.Description,
		CreatedAt:        model.NewTimestamp(r.now()),
		FileSize:         reg.FileSize,
		RegistrationTime: r.clock.Seconds(),
		Annotations:      reg.Annotations.Clone(),
	}
	if r.store != nil {
		if err := r.store.SaveModel(ctx, meta); err != nil {
			return model.ModelMetadata{}, fmt.Errorf("save model %s v%d: %w", name, next, err)
		}
	}
	l.versions = append(l.versions, meta)
	return meta.Clone(), nil
}

func (r *Registry) Get(ctx context.Context, name string, version int) (model.ModelMetadata, error) {
	versions, err := r.Versions(ctx, name)
	if err != nil {
		return model.ModelMetadata{}, err
	}
	idx := sort.Search(len(versions), func(i int) bool { return versions[i].Version >= version })
	if idx == len(versions) || versions[idx].Version != version {
		return model.ModelMetadata{}, fmt.Errorf("%w: %s v%d", ErrVersionNotFound, name, version)
	}
	return versions[idx], nil
}

func (r *Registry) Latest(ctx context.Context, name string) (model.ModelMetadata, error) {
	versions, err := r.Versions(ctx, name)
	if err != nil {
		return model.ModelMetadata{}, err
	}
	return versions[len(versions)-1], nil
}

// Versions returns every version of name in ascending order. Names are
// matched after trimming surrounding space, as in Register.
func (r *Registry) Versions(ctx context.Context, name string) ([]model.ModelMetadata, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	var l *lineage
	if r.store == nil {
		// Nothing to load, so unknown names get no lineage.
		l = r.existingLineage(name)
		if l == nil {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
	} else {
		l = r.lineage(name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := r.load(ctx, name, l); err != nil {
		return nil, err
	}
	if len(l.versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	out := make([]model.ModelMetadata, 0, len(l.versions))
	for _, meta := range l.versions {
		out = append(out, meta.Clone())
	}
	return out, nil
}

// Names lists every registered model name in sorted order, including names
// only known to the backing store.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	if r.store != nil {
		stored, err := r.store.ListModelNames(ctx)
		if err != nil {
			return nil, fmt.Errorf("list model names: %w", err)
		}
		for _, name := range stored {
			seen[name] = struct{}{}
		}
	}

	r.mu.Lock()
	for name, l := range r.lineages {
		l.mu.Lock()
		if len(l.versions) > 0 {
			seen[name] = struct{}{}
		}
		l.mu.Unlock()
	}
	r.mu.Unlock()

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Registry) existingLineage(name string) *lineage {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lineages[name]
}

func (r *Registry) lineage(name string) *lineage {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lineages[name]
	if !ok {
		l = &lineage{}
		r.lineages[name] = l
	}
	return l
}

// load fills l from the store once. Callers hold l.mu.
func (r *Registry) load(ctx context.Context, name string, l *lineage) error {
	if l.loaded {
		return nil
	}
	if r.store != nil {
		versions, err := r.store.ListModelVersions(ctx, name)
		if err != nil {
			return fmt.Errorf("load model %s: %w", name, err)
		}
		l.versions = versions
	}
	l.loaded = true
	return nil
}
