package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
)

// rawItem is the tolerant wire form of an item. It accepts the object
// form with dims/dimensions/size aliases, and a bare [l, w, h] array.
type rawItem struct {
	ID           string
	Dims         []float64
	Quantity     *int
	Orientations []string
}

// UnmarshalJSON decodes either a bare dimension triple or an object.
func (ri *rawItem) UnmarshalJSON(data []byte) error {
	var dims []float64
	if err := json.Unmarshal(data, &dims); err == nil {
		ri.Dims = dims
		return nil
	}

	var obj struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Dims         []float64 `json:"dims"`
		Dimensions   []float64 `json:"dimensions"`
		Size         []float64 `json:"size"`
		Quantity     *int      `json:"quantity"`
		Orientations []string  `json:"orientations"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	ri.ID = obj.ID
	if ri.ID == "" {
		ri.ID = obj.Name
	}
	ri.Dims = obj.Dims
	if len(ri.Dims) == 0 {
		ri.Dims = obj.Dimensions
	}
	if len(ri.Dims) == 0 {
		ri.Dims = obj.Size
	}
	ri.Quantity = obj.Quantity
	ri.Orientations = obj.Orientations
	return nil
}

// ParseJSON parses a JSON catalog. Both the canonical {"items": [...]}
// document and a bare item array are accepted.
func ParseJSON(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []rawItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse catalog")
		}
		return fromRaw(items)
	}

	var doc struct {
		Items []rawItem `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse catalog")
	}
	return fromRaw(doc.Items)
}

// ParseTOML parses a TOML catalog with [[items]] tables.
func ParseTOML(data []byte) (*Catalog, error) {
	var doc struct {
		Items []struct {
			ID           string    `toml:"id"`
			Name         string    `toml:"name"`
			Dims         []float64 `toml:"dims"`
			Dimensions   []float64 `toml:"dimensions"`
			Size         []float64 `toml:"size"`
			Quantity     *int      `toml:"quantity"`
			Orientations []string  `toml:"orientations"`
		} `toml:"items"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse catalog")
	}

	raw := make([]rawItem, len(doc.Items))
	for i, ti := range doc.Items {
		id := ti.ID
		if id == "" {
			id = ti.Name
		}
		dims := ti.Dims
		if len(dims) == 0 {
			dims = ti.Dimensions
		}
		if len(dims) == 0 {
			dims = ti.Size
		}
		raw[i] = rawItem{ID: id, Dims: dims, Quantity: ti.Quantity, Orientations: ti.Orientations}
	}
	return fromRaw(raw)
}

// Load reads a catalog file, dispatching on the extension.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailed, err, "read catalog %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".toml":
		return ParseTOML(data)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat,
		"unsupported catalog format %q (expected .json or .toml)", filepath.Ext(path))
}

// fromRaw converts tolerant wire items into catalog items. Unnamed
// items get positional IDs so every physical box stays addressable.
func fromRaw(raw []rawItem) (*Catalog, error) {
	cat := &Catalog{Items: make([]Item, 0, len(raw))}
	for i, ri := range raw {
		id := ri.ID
		if id == "" {
			id = fmt.Sprintf("item-%d", i+1)
		}

		if len(ri.Dims) != 3 {
			return nil, errors.New(errors.ErrCodeInvalidItem,
				"item %q: expected 3 dimensions, got %d", id, len(ri.Dims))
		}

		qty := 1
		if ri.Quantity != nil {
			if *ri.Quantity < 1 {
				return nil, errors.New(errors.ErrCodeInvalidItem,
					"item %q has quantity %d", id, *ri.Quantity)
			}
			qty = *ri.Quantity
		}

		orients := make([]Orientation, 0, len(ri.Orientations))
		for _, s := range ri.Orientations {
			o, err := ParseOrientation(s)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %q", id)
			}
			orients = append(orients, o)
		}

		cat.Items = append(cat.Items, Item{
			ID:           id,
			Dims:         geom.Vec3{X: ri.Dims[0], Y: ri.Dims[1], Z: ri.Dims[2]},
			Quantity:     qty,
			Orientations: orients,
		})
	}
	return cat, nil
}
