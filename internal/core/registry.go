package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Entity)
	registryMu sync.RWMutex
)

// Register adds an entity to the registry.
// Panics if the key is empty or already registered.
func Register(e Entity) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if e.Key == "" {
		panic("entity key must not be empty")
	}
	if _, exists := registry[e.Key]; exists {
		panic(fmt.Sprintf("entity already registered: %s", e.Key))
	}
	if e.Label == "" {
		e.Label = e.Key
	}

	registry[e.Key] = e
}

// Get returns an entity by key.
func Get(key string) (Entity, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[key]
	return e, ok
}

// Lookup is Get returning ErrUnknownEntity for a missing key.
func Lookup(key string) (Entity, error) {
	e, ok := Get(key)
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", ErrUnknownEntity, key)
	}
	return e, nil
}

// All returns every registered entity, sorted by group then key.
func All() []Entity {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Entity, 0, len(registry))
	for _, e := range registry {
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// ByGroup returns the entities of one group, sorted by key.
func ByGroup(group string) []Entity {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []Entity
	for _, e := range registry {
		if e.Group == group {
			result = append(result, e)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// Groups returns all group names, sorted.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, e := range registry {
		seen[e.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// Count returns the number of registered entities.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered entities.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Entity)
}
