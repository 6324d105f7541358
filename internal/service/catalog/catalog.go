package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const GlobalFallbackDays = 180

var ErrInvalidEntry = errors.New("invalid catalog entry")

// Entry is one item type and its expected lifetime.
type Entry struct {
	ItemType string `json:"itemType"`
	Days     int    `json:"days"`
}

// Category is the presentation grouping of entries.
type Category struct {
	Name         string  `json:"name"`
	FallbackDays int     `json:"fallbackDays,omitempty"`
	Entries      []Entry `json:"entries"`
}

type entry struct {
	category string
	days     int
}

// Catalog maps item types to their expected lifetime in days.
// It is immutable once built; share it freely between goroutines.
type Catalog struct {
	entries   map[string]entry
	folded    map[string]string
	fallbacks map[string]int
	order     map[string][]string
}

// New builds a catalog from category definitions. Later categories override
// earlier ones for the same item type.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{
		entries:   make(map[string]entry),
		folded:    make(map[string]string),
		fallbacks: make(map[string]int),
		order:     make(map[string][]string),
	}

	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty category name", ErrInvalidEntry)
		}
		if cat.FallbackDays < 0 {
			return nil, fmt.Errorf("%w: category %q fallback must be positive, got %d", ErrInvalidEntry, name, cat.FallbackDays)
		}
		if cat.FallbackDays > 0 {
			c.fallbacks[name] = cat.FallbackDays
		}
		if _, ok := c.order[name]; !ok {
			c.order[name] = nil
		}

		for _, e := range cat.Entries {
			itemType := strings.TrimSpace(e.ItemType)
			if itemType == "" {
				return nil, fmt.Errorf("%w: empty item type in category %q", ErrInvalidEntry, name)
			}
			if e.Days <= 0 {
				return nil, fmt.Errorf("%w: %s/%s days must be positive, got %d", ErrInvalidEntry, name, itemType, e.Days)
			}

			if prev, ok := c.entries[itemType]; ok {
				c.order[prev.category] = remove(c.order[prev.category], itemType)
			}
			c.entries[itemType] = entry{category: name, days: e.Days}
			c.folded[strings.ToLower(itemType)] = itemType
			c.order[name] = append(c.order[name], itemType)
		}
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(DefaultCategories())
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// Lookup returns the expected lifetime for an item type. Exact matches win
// over case-insensitive ones.
func (c *Catalog) Lookup(itemType string) (int, bool) {
	key, ok := c.resolve(itemType)
	if !ok {
		return 0, false
	}
	return c.entries[key].days, true
}

// CategoryOf returns the category of an item type, or false when unknown.
func (c *Catalog) CategoryOf(itemType string) (string, bool) {
	key, ok := c.resolve(itemType)
	if !ok {
		return "", false
	}
	return c.entries[key].category, true
}

// DefaultDuration resolves the lifetime for a new item: the catalog value,
// then the category fallback, then GlobalFallbackDays.
func (c *Catalog) DefaultDuration(category, itemType string) int {
	if days, ok := c.Lookup(itemType); ok {
		return days
	}
	if category == "" {
		category, _ = c.CategoryOf(itemType)
	}
	if days, ok := c.fallbacks[strings.ToLower(strings.TrimSpace(category))]; ok {
		return days
	}
	return GlobalFallbackDays
}

// Categories returns the presentation view sorted by category name. Entries
// keep their definition order.
func (c *Catalog) Categories() []Category {
	names := make([]string, 0, len(c.order))
	for name := range c.order {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Category, 0, len(names))
	for _, name := range names {
		cat := Category{
			Name:         name,
			FallbackDays: c.fallbacks[name],
			Entries:      make([]Entry, 0, len(c.order[name])),
		}
		for _, itemType := range c.order[name] {
			cat.Entries = append(cat.Entries, Entry{ItemType: itemType, Days: c.entries[itemType].days})
		}
		out = append(out, cat)
	}
	return out
}

func (c *Catalog) resolve(itemType string) (string, bool) {
	itemType = strings.TrimSpace(itemType)
	if _, ok := c.entries[itemType]; ok {
		return itemType, true
	}
	key, ok := c.folded[strings.ToLower(itemType)]
	return key, ok
}

func remove(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
