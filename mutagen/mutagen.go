// Package mutagen hands typed mutation settings to the components that
// build mutating templates, so a critter and its brain can each pull their
// own settings from one provider.
package mutagen

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNoSettings is returned when no settings of the requested type exist.
var ErrNoSettings = errors.New("no settings registered for this type")

// Provider stores one settings value per Go type.
type Provider struct {
	mu     sync.RWMutex
	values map[reflect.Type]any
}

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{values: make(map[reflect.Type]any)}
}

// Register stores v as the settings for type T, replacing any previous value.
func Register[T any](p *Provider, v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[reflect.TypeFor[T]()] = v
}

// Lookup returns the settings registered for T. It never falls back to a
// zero value.
func Lookup[T any](p *Provider) (T, error) {
	var zero T
	typ := reflect.TypeFor[T]()
	if p == nil {
		return zero, fmt.Errorf("%w: %v", ErrNoSettings, typ)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.values[typ]
	if !ok {
		return zero, fmt.Errorf("%w: %v", ErrNoSettings, typ)
	}
	return v.(T), nil
}
