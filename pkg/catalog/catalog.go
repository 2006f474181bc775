// Package catalog defines the item catalog fed into a packing run and
// the parsers that read it from JSON or TOML.
//
// A catalog is a flat, ordered list of items. Order matters: the
// engine's catalog ordering policy and all tie-breaking derive from it.
// Normalize validates the list and expands quantities, so the engine
// only ever sees one entry per physical box.
package catalog

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
)

// Item is a box type to place. Dims are length, width, and height in
// container units, before any orientation is applied.
type Item struct {
	ID           string        `json:"id"`
	Dims         geom.Vec3     `json:"dims"`
	Quantity     int           `json:"quantity,omitempty"`
	Orientations []Orientation `json:"orientations,omitempty"`
}

// Volume returns the item volume, which is orientation-independent.
func (it Item) Volume() float64 {
	return it.Dims.X * it.Dims.Y * it.Dims.Z
}

// Catalog is an ordered list of items.
type Catalog struct {
	Items []Item `json:"items"`
}

// Len returns the number of catalog entries before expansion.
func (c *Catalog) Len() int {
	return len(c.Items)
}

// Normalize validates the catalog and returns an expanded copy with
// one entry per physical box:
//
//   - item IDs must be non-empty, unique, and path-safe
//   - all three dimensions must be strictly positive
//   - quantity must be at least 1; entries with quantity n > 1 are
//     expanded into n items suffixed -1..-n
//   - orientations must be known; duplicates are dropped, order kept;
//     an empty list means all six
//
// The input catalog is not modified. Normalizing an already expanded
// catalog is a no-op copy.
func (c *Catalog) Normalize() (*Catalog, error) {
	if len(c.Items) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog has no items")
	}

	expanded := &Catalog{Items: make([]Item, 0, len(c.Items))}
	seen := make(map[string]bool, len(c.Items))

	for i, it := range c.Items {
		if err := errors.ValidateItemID(it.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %d", i)
		}
		if it.Dims.X <= 0 || it.Dims.Y <= 0 || it.Dims.Z <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidItem,
				"item %q has non-positive dimensions [%g, %g, %g]", it.ID, it.Dims.X, it.Dims.Y, it.Dims.Z)
		}

		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 1 {
			return nil, errors.New(errors.ErrCodeInvalidItem, "item %q has quantity %d", it.ID, it.Quantity)
		}

		orients, err := normalizeOrientations(it.ID, it.Orientations)
		if err != nil {
			return nil, err
		}

		for n := 1; n <= qty; n++ {
			id := it.ID
			if qty > 1 {
				id = fmt.Sprintf("%s-%d", it.ID, n)
			}
			if seen[id] {
				return nil, errors.New(errors.ErrCodeInvalidCatalog, "duplicate item id %q", id)
			}
			seen[id] = true
			expanded.Items = append(expanded.Items, Item{
				ID:           id,
				Dims:         it.Dims,
				Quantity:     1,
				Orientations: orients,
			})
		}
	}

	return expanded, nil
}

// Hash returns the sha256 of the normalized catalog JSON. Catalogs
// that expand to the same item list hash identically regardless of how
// they were written, so the hash is a stable cache-key ingredient.
func (c *Catalog) Hash() (string, error) {
	norm, err := c.Normalize()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(norm)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode catalog")
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// normalizeOrientations validates and dedupes an orientation list,
// preserving first-seen order. Empty means all six.
func normalizeOrientations(itemID string, orients []Orientation) ([]Orientation, error) {
	if len(orients) == 0 {
		return AllOrientations(), nil
	}

	out := make([]Orientation, 0, len(orients))
	seen := make(map[Orientation]bool, len(orients))
	for _, o := range orients {
		parsed, err := ParseOrientation(string(o))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %q", itemID)
		}
		if seen[parsed] {
			continue
		}
		seen[parsed] = true
		out = append(out, parsed)
	}
	return out, nil
}
