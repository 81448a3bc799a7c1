// Package portfolio holds the projects shown on the portfolio page.
package portfolio

import (
	"fmt"
	"sync"
)

// Project describes one portfolio card.
type Project struct {
	Key         string
	Title       string
	Description string
	Image       string // file name under /static/images/
	DetailPath  string
	DemoPath    string // empty when the project has no live demo
}

// HasDemo reports whether the card links to a live demo.
func (p Project) HasDemo() bool {
	return p.DemoPath != ""
}

var (
	registry   = make(map[string]Project)
	order      []string
	registryMu sync.RWMutex
)

// Register adds a project to the registry.
// Panics if a project with the same key is already registered or the key is empty.
func Register(p Project) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if p.Key == "" {
		panic("project key is required")
	}
	if _, exists := registry[p.Key]; exists {
		panic(fmt.Sprintf("project already registered: %s", p.Key))
	}

	registry[p.Key] = p
	order = append(order, p.Key)
}

// Get returns a project by key.
// Returns false if not found.
func Get(key string) (Project, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := registry[key]
	return p, ok
}

// All returns all registered projects in registration order.
func All() []Project {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Project, 0, len(order))
	for _, key := range order {
		result = append(result, registry[key])
	}
	return result
}

// Count returns the number of registered projects.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(order)
}

// Clear removes all registered projects.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Project)
	order = nil
}
