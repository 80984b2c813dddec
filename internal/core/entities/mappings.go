// Package entities registers the dashboard's entity pages with the core
// registry. Import it for its side effects:
//
//	import _ "github.com/JonMunkholm/coverdesk/internal/core/entities"
package entities

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/coverdesk/internal/importer"
)

//go:embed mappings.yaml
var mappingsYAML []byte

// headerDictionary is entity -> field -> accepted header spellings.
type headerDictionary map[string]map[string][]string

var loadDictionary = sync.OnceValues(func() (headerDictionary, error) {
	return parseDictionary(mappingsYAML)
})

func parseDictionary(data []byte) (headerDictionary, error) {
	var dict headerDictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parse header mappings: %w", err)
	}
	return dict, nil
}

// buildMapping inverts one entity's dictionary into header -> field.
// A header listed under two fields is a configuration error.
func buildMapping(fields map[string][]string) (importer.FieldMapping, error) {
	m := make(importer.FieldMapping)
	for field, headers := range fields {
		for _, h := range headers {
			if prev, ok := m[h]; ok && prev != field {
				return nil, fmt.Errorf("header %q maps to both %q and %q", h, prev, field)
			}
			m[h] = field
		}
	}
	return m, nil
}

// Mapping returns the header mapping for an entity. Unknown entities get
// an empty mapping.
func Mapping(entity string) (importer.FieldMapping, error) {
	dict, err := loadDictionary()
	if err != nil {
		return nil, err
	}
	return buildMapping(dict[entity])
}

func mustMapping(entity string) importer.FieldMapping {
	m, err := Mapping(entity)
	if err != nil {
		panic(fmt.Sprintf("entities: %s: %v", entity, err))
	}
	return m
}
