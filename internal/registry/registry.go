// Package registry resolves human-supplied facility names to canonical
// identifiers.  It keeps a process-wide snapshot of the facilities table
// that is replaced atomically on refresh: readers never observe a
// half-updated list, and a failed refresh leaves the previous good snapshot
// in place.  The snapshot always holds the full unfiltered list; filtered
// views handed out by List are derived copies.
package registry

import (
    "context"
    "strings"
    "sync/atomic"

    "github.com/clubrosario/booking-bot/internal/model"
    "github.com/clubrosario/booking-bot/internal/repository"
)

// Lister is the narrow slice of the facility repository the registry needs.
type Lister interface {
    ListAll(ctx context.Context) ([]model.Facility, error)
}

// Registry caches the canonical facility list.  Safe for concurrent use.
type Registry struct {
    store    Lister
    snapshot atomic.Pointer[[]model.Facility]
}

// New returns a Registry with an empty cache.  The first Resolve or List
// call populates it from the store.
func New(store Lister) *Registry {
    return &Registry{store: store}
}

// Refresh reloads the full facility list from the backing store and swaps
// it in as the new snapshot.  On error the previous snapshot is kept.
func (r *Registry) Refresh(ctx context.Context) error {
    facilities, err := r.store.ListAll(ctx)
    if err != nil {
        return err
    }
    r.snapshot.Store(&facilities)
    return nil
}

// current returns the cached snapshot, refreshing first when the cache has
// never been populated.
func (r *Registry) current(ctx context.Context) ([]model.Facility, error) {
    if p := r.snapshot.Load(); p != nil {
        return *p, nil
    }
    if err := r.Refresh(ctx); err != nil {
        return nil, err
    }
    return *r.snapshot.Load(), nil
}

// Resolve matches a user-supplied name against the cached canonical list,
// case-insensitively, and returns the matching facility with its canonical
// casing.  repository.ErrFacilityNotFound is returned when no facility
// matches, and also when the cache is empty and cannot be refreshed: with
// no known facilities every name is unknown, and callers answer with the
// (empty) list of valid options rather than a technical error.
func (r *Registry) Resolve(ctx context.Context, name string) (model.Facility, error) {
    facilities, err := r.current(ctx)
    if err != nil {
        return model.Facility{}, repository.ErrFacilityNotFound
    }
    for _, f := range facilities {
        if strings.EqualFold(f.Name, name) {
            return f, nil
        }
    }
    return model.Facility{}, repository.ErrFacilityNotFound
}

// Names returns the canonical names of the cached snapshot without hitting
// the backing store.  Used to list valid options in error messages; an
// unpopulated cache yields nil.
func (r *Registry) Names() []string {
    p := r.snapshot.Load()
    if p == nil {
        return nil
    }
    names := make([]string, 0, len(*p))
    for _, f := range *p {
        names = append(names, f.Name)
    }
    return names
}

// List refreshes the cache from the backing store and returns the canonical
// names, optionally filtered by a case-insensitive substring.  The filter
// only shapes the returned copy, never the stored snapshot.
func (r *Registry) List(ctx context.Context, filter string) ([]string, error) {
    if err := r.Refresh(ctx); err != nil {
        return nil, err
    }
    facilities := *r.snapshot.Load()
    names := make([]string, 0, len(facilities))
    for _, f := range facilities {
        if filter != "" && !strings.Contains(strings.ToLower(f.Name), strings.ToLower(filter)) {
            continue
        }
        names = append(names, f.Name)
    }
    return names, nil
}
