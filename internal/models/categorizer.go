// Package models provides the data structures used throughout the engine.
package models

import (
	"fmt"
	"strings"
)

// CategoryLabel is a spending category name.
type CategoryLabel string

func (l CategoryLabel) String() string {
	return string(l)
}

// CategoryConfig is one row of the ordered keyword table in the YAML file.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoriesConfig represents the structure of the categories YAML file.
type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
	// Aliases maps foreign labels (e.g. from training data) onto configured categories.
	Aliases map[string]string `yaml:"aliases,omitempty"`
	// Other names the catch-all category; defaults to "Other".
	Other string `yaml:"other,omitempty"`
}

// DefaultKeywordTable returns the built-in ordered keyword table.
func DefaultKeywordTable() []CategoryConfig {
	return []CategoryConfig{
		{Name: string(CategoryShopping), Keywords: []string{"amazon", "walmart", "target", "store"}},
		{Name: string(CategoryGroceries), Keywords: []string{"grocery", "food", "market"}},
		{Name: string(CategoryTransportation), Keywords: []string{"uber", "lyft", "taxi", "gas"}},
		{Name: string(CategoryEntertainment), Keywords: []string{"netflix", "spotify", "movie"}},
		{Name: string(CategoryUtilities), Keywords: []string{"electric", "water", "internet"}},
		{Name: string(CategoryHealthcare), Keywords: []string{"hospital", "doctor", "pharmacy"}},
		{Name: string(CategoryDining), Keywords: []string{"restaurant", "cafe", "coffee"}},
		{Name: string(CategoryTravel), Keywords: []string{"hotel", "flight", "airbnb"}},
	}
}

// DefaultAliases maps the labels used by the trainable pipeline's sample data
// onto the default category set.
func DefaultAliases() map[string]string {
	return map[string]string{
		"Transport":        string(CategoryTransportation),
		"Food & Drink":     string(CategoryDining),
		"Restaurants":      string(CategoryDining),
		"Health & Fitness": string(CategoryHealthcare),
		"Health":           string(CategoryHealthcare),
		"Housing":          string(CategoryUtilities),
		"Uncategorized":    string(CategoryOther),
	}
}

// Taxonomy is the closed, configured set of category labels.
// It is immutable after construction.
type Taxonomy struct {
	categories []CategoryLabel
	byName     map[string]CategoryLabel
	aliases    map[string]CategoryLabel
	other      CategoryLabel
}

// NewTaxonomy builds a taxonomy. Names are matched case-insensitively; other
// must be one of categories (it is appended when absent). Every alias target
// must be a member.
func NewTaxonomy(categories []string, other string, aliases map[string]string) (*Taxonomy, error) {
	if strings.TrimSpace(other) == "" {
		other = string(CategoryOther)
	}

	t := &Taxonomy{
		byName:  make(map[string]CategoryLabel),
		aliases: make(map[string]CategoryLabel),
	}

	for _, name := range categories {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("category name cannot be empty")
		}
		key := strings.ToLower(name)
		if _, dup := t.byName[key]; dup {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		t.byName[key] = CategoryLabel(name)
		t.categories = append(t.categories, CategoryLabel(name))
	}

	if label, ok := t.byName[strings.ToLower(other)]; ok {
		t.other = label
	} else {
		t.other = CategoryLabel(other)
		t.byName[strings.ToLower(other)] = t.other
		t.categories = append(t.categories, t.other)
	}

	if len(t.categories) < 2 {
		return nil, fmt.Errorf("category set needs at least 2 categories, got %d", len(t.categories))
	}

	for from, to := range aliases {
		target, ok := t.byName[strings.ToLower(strings.TrimSpace(to))]
		if !ok {
			return nil, fmt.Errorf("alias %q targets unknown category %q", from, to)
		}
		t.aliases[strings.ToLower(strings.TrimSpace(from))] = target
	}

	return t, nil
}

// DefaultTaxonomy returns the default category set with DefaultAliases.
func DefaultTaxonomy() *Taxonomy {
	table := DefaultKeywordTable()
	names := make([]string, 0, len(table)+1)
	for _, c := range table {
		names = append(names, c.Name)
	}
	t, err := NewTaxonomy(names, string(CategoryOther), DefaultAliases())
	if err != nil {
		panic(fmt.Sprintf("default taxonomy is invalid: %v", err))
	}
	return t
}

// Categories returns the configured labels in configuration order.
func (t *Taxonomy) Categories() []CategoryLabel {
	out := make([]CategoryLabel, len(t.categories))
	copy(out, t.categories)
	return out
}

// Other returns the catch-all label.
func (t *Taxonomy) Other() CategoryLabel {
	return t.other
}

// Contains reports whether label is a configured category (exact match).
func (t *Taxonomy) Contains(label CategoryLabel) bool {
	canonical, ok := t.byName[strings.ToLower(string(label))]
	return ok && canonical == label
}

// Canonical resolves a free-form label to a configured category, first by
// case-insensitive name and then through the alias table.
func (t *Taxonomy) Canonical(label string) (CategoryLabel, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return "", false
	}
	if c, ok := t.byName[key]; ok {
		return c, true
	}
	if c, ok := t.aliases[key]; ok {
		return c, true
	}
	return "", false
}
