// Package registry maps canonical component names to constructors, one registry per component kind.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/neurlang/trainkit/config"
)

// ErrUnknownComponent is matched by every lookup of a name that was never registered.
var ErrUnknownComponent = errors.New("unknown component")

// UnknownComponentError names the registry and the identifier that failed to resolve.
type UnknownComponentError struct {
	Registry string
	Name     string
	Known    []string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("%s %q not recognized (known: %s)", e.Registry, e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownComponentError) Is(target error) bool {
	return target == ErrUnknownComponent || target == config.ErrConfiguration
}

// Registry holds the constructors of one component kind. F is the constructor signature.
// It is filled at startup and read afterwards; Register stays safe to call at any time.
type Registry[F any] struct {
	kind    string
	mu      sync.RWMutex
	entries map[string]F
}

// New creates an empty registry for the given component kind ("optimizer", "dataset", ...).
func New[F any](kind string) *Registry[F] {
	return &Registry[F]{kind: kind, entries: make(map[string]F)}
}

// Kind returns the component kind this registry serves.
func (r *Registry[F]) Kind() string {
	return r.kind
}

// Register adds a constructor under name. Names are unique.
func (r *Registry[F]) Register(name string, ctor F) error {
	if name == "" {
		return fmt.Errorf("%s registry: empty name", r.kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[name]; dup {
		return fmt.Errorf("%s registry: %q already registered", r.kind, name)
	}
	r.entries[name] = ctor
	return nil
}

// MustRegister is Register for startup wiring; it panics on error and returns r for chaining.
func (r *Registry[F]) MustRegister(name string, ctor F) *Registry[F] {
	if err := r.Register(name, ctor); err != nil {
		panic(err.Error())
	}
	return r
}

// Lookup returns the constructor registered under name or an *UnknownComponentError.
func (r *Registry[F]) Lookup(name string) (F, error) {
	r.mu.RLock()
	ctor, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		var zero F
		return zero, &UnknownComponentError{Registry: r.kind, Name: name, Known: r.Names()}
	}
	return ctor, nil
}

// Has reports whether name is registered.
func (r *Registry[F]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry[F]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered constructors.
func (r *Registry[F]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
