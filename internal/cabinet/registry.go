package cabinet

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lukman83/wbops/config"
)

// Factory builds the client of a cabinet, typically resolving its token.
type Factory func(cab config.Cabinet) (API, error)

// Registry hands out one client per configured cabinet. Clients are built on
// first use so that commands touching one cabinet need only its token.
type Registry struct {
	mu       sync.RWMutex
	cabinets []config.Cabinet
	clients  map[string]API
	factory  Factory
}

func NewRegistry(cabinets []config.Cabinet, factory Factory) *Registry {
	return &Registry{
		cabinets: append([]config.Cabinet(nil), cabinets...),
		clients:  make(map[string]API),
		factory:  factory,
	}
}

func key(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }

// Register installs a ready client for id, replacing any built one.
func (r *Registry) Register(id string, api API) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[key(id)] = api
}

// Cabinet returns the configuration of a cabinet.
func (r *Registry) Cabinet(id string) (config.Cabinet, error) {
	for _, c := range r.cabinets {
		if key(c.ID) == key(id) {
			return c, nil
		}
	}
	return config.Cabinet{}, fmt.Errorf("cabinet %q not configured (known: %s)", id, strings.Join(r.List(), ", "))
}

// Get returns the cabinet and its client.
func (r *Registry) Get(id string) (config.Cabinet, API, error) {
	cab, err := r.Cabinet(id)
	if err != nil {
		return config.Cabinet{}, nil, err
	}

	r.mu.RLock()
	api, ok := r.clients[key(cab.ID)]
	r.mu.RUnlock()
	if ok {
		return cab, api, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if api, ok := r.clients[key(cab.ID)]; ok {
		return cab, api, nil
	}
	if r.factory == nil {
		return config.Cabinet{}, nil, fmt.Errorf("cabinet %q has no client", cab.ID)
	}
	api, err = r.factory(cab)
	if err != nil {
		return config.Cabinet{}, nil, err
	}
	r.clients[key(cab.ID)] = api
	return cab, api, nil
}

// List returns the cabinet ids in configuration order.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.cabinets))
	for _, c := range r.cabinets {
		ids = append(ids, c.ID)
	}
	return ids
}
