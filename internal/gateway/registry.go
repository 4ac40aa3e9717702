package gateway

import (
	"fmt"
	"strings"
)

// Registry is the static map of logical service name to base URL. It is built
// once from configuration; there is no dynamic service discovery. The
// insertion order is kept so schema merges resolve collisions
// deterministically.
type Registry struct {
	names []string
	urls  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{urls: make(map[string]string)}
}

func (r *Registry) Add(name, baseURL string) {
	if _, ok := r.urls[name]; !ok {
		r.names = append(r.names, name)
	}
	r.urls[name] = strings.TrimRight(baseURL, "/")
}

func (r *Registry) Names() []string {
	return r.names
}

func (r *Registry) BaseURL(name string) (string, bool) {
	url, ok := r.urls[name]
	return url, ok
}

// ParseRegistry parses a "name=url,name=url" listing, the form the registry
// takes in the environment.
func ParseRegistry(listing string) (*Registry, error) {
	registry := NewRegistry()
	for _, entry := range strings.Split(listing, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, url, ok := strings.Cut(entry, "=")
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid service registry entry %q", entry)
		}
		registry.Add(strings.TrimSpace(name), strings.TrimSpace(url))
	}
	if len(registry.names) == 0 {
		return nil, fmt.Errorf("service registry is empty")
	}
	return registry, nil
}
