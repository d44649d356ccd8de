package adapters

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/JaimeStill/inquest/internal/sources"
)

// Registry maps adapter codes to factories. It is safe for concurrent use
// and may be extended after startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry holding the built-in adapters.
func Default() *Registry {
	r := NewRegistry()
	r.Register(GenericProfile.Name, NewSelector(GenericProfile))
	r.Register(UKPFDProfile.Name, NewSelector(UKPFDProfile))
	return r
}

// Register adds or replaces the factory for code.
func (r *Registry) Register(code string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[code] = f
}

// Codes lists the registered adapter codes in order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.factories))
	for code := range r.factories {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// New builds the adapter for src, keyed by its adapter identifier or, when
// that is empty, its code.
func (r *Registry) New(src sources.Source) (Adapter, error) {
	code := src.AdapterCode()

	r.mu.RLock()
	f, ok := r.factories[code]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownAdapter, code, strings.Join(r.Codes(), ", "))
	}
	return f(src)
}
