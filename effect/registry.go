package effect

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrAlreadyLoaded  = errors.New("effect: already loaded")
	ErrNotLoaded      = errors.New("effect: not loaded")
	ErrUnknownEffect  = errors.New("effect: unknown effect")
	ErrUnsupported    = errors.New("effect: not supported by this backend")
	ErrDuplicateName  = errors.New("effect: name already registered")
	ErrInvalidFactory = errors.New("effect: factory has no constructor")
)

// Factory creates an effect by name.
type Factory struct {
	New func(h *Handler) Effect
	// Supported reports whether the effect can run. Nil means always.
	Supported func() bool
	// EnabledByDefault effects are loaded when configuration is silent.
	EnabledByDefault bool
}

func (f Factory) supported() bool {
	return f.Supported == nil || f.Supported()
}

// Registry maps effect names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if f.New == nil {
		return fmt.Errorf("%w: %q", ErrInvalidFactory, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.factories[name] = f
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Defaults returns the sorted names of supported effects enabled by
// default.
func (r *Registry) Defaults() []string {
	var out []string
	for _, n := range r.Names() {
		if f, _ := r.Lookup(n); f.EnabledByDefault && f.supported() {
			out = append(out, n)
		}
	}
	return out
}
