package render

import (
	"encoding/json"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// JSONOption configures JSON artifact rendering.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact      bool
	withoutStats bool
}

// WithCompact renders single-line JSON instead of indented output.
func WithCompact() JSONOption {
	return func(r *jsonRenderer) { r.compact = true }
}

// WithoutStats omits the stats block, leaving only the data needed to
// replay the record.
func WithoutStats() JSONOption {
	return func(r *jsonRenderer) { r.withoutStats = true }
}

// RenderJSON encodes a record as a JSON artifact.
func RenderJSON(rec *pack.Record, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var v any = rec
	if r.withoutStats {
		v = struct {
			Container  geom.Vec3           `json:"container"`
			Params     pack.Params         `json:"params"`
			Placements []pack.PlacedItem   `json:"placements"`
			Unplaced   []pack.UnplacedItem `json:"unplaced"`
		}{rec.Container, rec.Params, rec.Placements, rec.Unplaced}
	}

	var (
		data []byte
		err  error
	)
	if r.compact {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode record")
	}
	return data, nil
}
