package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type fileCategory struct {
	FallbackDays int            `yaml:"fallbackDays"`
	Items        map[string]int `yaml:"items"`
}

type fileFormat struct {
	Categories map[string]fileCategory `yaml:"categories"`
}

// LoadFile builds a catalog from the built-in defaults overridden by the YAML
// file at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse is LoadFile without the filesystem.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	names := make([]string, 0, len(f.Categories))
	for name := range f.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := DefaultCategories()
	for _, name := range names {
		fc := f.Categories[name]

		itemTypes := make([]string, 0, len(fc.Items))
		for itemType := range fc.Items {
			itemTypes = append(itemTypes, itemType)
		}
		sort.Strings(itemTypes)

		cat := Category{Name: name, FallbackDays: fc.FallbackDays}
		for _, itemType := range itemTypes {
			cat.Entries = append(cat.Entries, Entry{ItemType: itemType, Days: fc.Items[itemType]})
		}
		categories = append(categories, cat)
	}

	return New(categories)
}
