package backend

import (
	"slices"
	"sync"
)

// BackendFactory builds a RenderBackend. A factory may return nil when
// its graphics API is unusable on this machine; Default then moves on.
type BackendFactory func() RenderBackend

// preferred is the order Default tries backends in. Backends missing
// from it follow in name order.
var preferred = []string{BackendNative, BackendOpenGL}

type registry struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}

var reg = newRegistry()

func newRegistry() *registry {
	return &registry{factories: make(map[string]BackendFactory)}
}

// order returns the registered names, preferred ones first.
// r.mu must be held.
func (r *registry) order() []string {
	names := make([]string, 0, len(r.factories))
	for _, name := range preferred {
		if _, ok := r.factories[name]; ok {
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(r.factories))
	for name := range r.factories {
		if !slices.Contains(preferred, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

// Register makes a backend selectable under name, replacing any earlier
// factory with that name. Backend packages call it from init.
func Register(name string, factory BackendFactory) {
	reg.mu.Lock()
	reg.factories[name] = factory
	reg.mu.Unlock()
	slogger().Debug("backend registered", "name", name)
}

// Unregister removes name from the registry.
func Unregister(name string) {
	reg.mu.Lock()
	delete(reg.factories, name)
	reg.mu.Unlock()
}

// Available returns the sorted names of registered backends.
func Available() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.factories))
	for name := range reg.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend named name is registered.
func IsRegistered(name string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	_, ok := reg.factories[name]
	return ok
}

// Get builds the backend registered as name, or returns nil.
func Get(name string) RenderBackend {
	reg.mu.RLock()
	factory, ok := reg.factories[name]
	reg.mu.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// Default builds the first usable backend: native, then opengl, then any
// other registered backend by name. It returns nil when none is usable.
func Default() RenderBackend {
	reg.mu.RLock()
	names := reg.order()
	factories := make([]BackendFactory, len(names))
	for i, name := range names {
		factories[i] = reg.factories[name]
	}
	reg.mu.RUnlock()

	for i, factory := range factories {
		if b := factory(); b != nil {
			return b
		}
		slogger().Debug("backend unusable", "name", names[i])
	}
	return nil
}

// MustDefault is Default for programs that cannot run without a GPU.
func MustDefault() RenderBackend {
	b := Default()
	if b == nil {
		panic("backend: no usable backend registered")
	}
	return b
}
