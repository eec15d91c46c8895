package facility

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/parking-fee/internal/tariff"
)

// ErrNoSource is returned by Reload on a registry built without a source.
var ErrNoSource = errors.New("facility: registry has no source")

// Registry holds the facility table. The table is replaced wholesale on
// Reload and never mutated in place, so lookups need only a read lock.
type Registry struct {
	source Source

	mu       sync.RWMutex
	rules    map[string]tariff.Rules
	names    []string
	loadedAt time.Time
}

// NewRegistry constructs an empty registry backed by source. Call Reload to populate it.
func NewRegistry(source Source) *Registry {
	return &Registry{source: source, rules: map[string]tariff.Rules{}}
}

// Reload fetches a fresh table from the source. On failure the previous
// table stays in place.
func (r *Registry) Reload(ctx context.Context) (int, error) {
	if r.source == nil {
		return 0, ErrNoSource
	}
	rules, err := r.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("reload facilities from %s: %w", r.source.Describe(), err)
	}
	names := sortedKeys(rules)

	r.mu.Lock()
	r.rules = rules
	r.names = names
	r.loadedAt = time.Now()
	r.mu.Unlock()
	return len(names), nil
}

// Lookup returns the rules of the named facility. Names are case-sensitive.
func (r *Registry) Lookup(name string) (tariff.Rules, error) {
	r.mu.RLock()
	rules, ok := r.rules[name]
	r.mu.RUnlock()
	if !ok {
		return tariff.Rules{}, fmt.Errorf("%w: %q", tariff.ErrUnknownFacility, name)
	}
	return rules, nil
}

// Names returns the facility names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of loaded facilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// LoadedAt returns when the current table was loaded; zero if never.
func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// Source returns a description of where the table comes from.
func (r *Registry) Source() string {
	if r.source == nil {
		return "none"
	}
	return r.source.Describe()
}
