package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/compositor/internal/logging"
)

// BackendFactory creates a new backend instance.
type BackendFactory func(cfg Config) (Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for backend selection (first available wins).
	// Native > Software (Software is the fallback).
	backendPriority = []string{BackendNative, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get creates the backend registered under name.
func Get(name string, cfg Config) (Backend, error) {
	if cfg.Display.Empty() {
		return nil, ErrEmptyDisplay
	}
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	b, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", name, err)
	}
	return b, nil
}

// Default returns the best available backend based on priority.
// Priority order: native > software, then any other registered backend.
// A backend whose factory fails is skipped.
func Default(cfg Config) (Backend, error) {
	if cfg.Display.Empty() {
		return nil, ErrEmptyDisplay
	}
	names := Available()
	order := slices.Clone(backendPriority)
	for _, n := range names {
		if !slices.Contains(order, n) {
			order = append(order, n)
		}
	}

	for _, name := range order {
		if !IsRegistered(name) {
			continue
		}
		b, err := Get(name, cfg)
		if err == nil {
			return b, nil
		}
		logging.Logger().Warn("backend unavailable, trying next", "backend", name, "err", err)
	}
	return nil, ErrBackendNotAvailable
}

// MustDefault returns the default backend or panics.
func MustDefault(cfg Config) Backend {
	b, err := Default(cfg)
	if err != nil {
		panic("backend: no backend available: " + err.Error())
	}
	return b
}
