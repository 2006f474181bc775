package pack

import (
	"github.com/matzehuels/cratestack/pkg/catalog"
	"github.com/matzehuels/cratestack/pkg/geom"
)

// Reasons an item can end a run unplaced. These are outcomes recorded
// per item, not errors: a run with unplaced items still succeeds.
const (
	// ReasonExceedsContainer means no allowed orientation of the item
	// fits an empty container. Detected before any position is tried.
	ReasonExceedsContainer = "exceeds-container"

	// ReasonNoFeasiblePosition means every candidate position and
	// orientation was tried (or the attempt cap was hit) without
	// finding a valid placement.
	ReasonNoFeasiblePosition = "no-feasible-position"
)

// PlacedItem is one committed placement.
type PlacedItem struct {
	ID           string              `json:"id" bson:"id"`
	Index        int                 `json:"index" bson:"index"`
	OriginalDims geom.Vec3           `json:"original_dims" bson:"original_dims"`
	Orientation  catalog.Orientation `json:"orientation" bson:"orientation"`
	PlacedDims   geom.Vec3           `json:"placed_dims" bson:"placed_dims"`
	Position     geom.Vec3           `json:"position" bson:"position"`
}

// Box returns the volume the placement occupies.
func (p PlacedItem) Box() geom.Box {
	return geom.Box{Min: p.Position, Extents: p.PlacedDims}
}

// UnplacedItem is an item the run could not place.
type UnplacedItem struct {
	ID     string    `json:"id" bson:"id"`
	Dims   geom.Vec3 `json:"dims" bson:"dims"`
	Reason string    `json:"reason" bson:"reason"`
}

// Stats summarizes a finished run.
type Stats struct {
	PlacedCount     int     `json:"placed_count" bson:"placed_count"`
	UnplacedCount   int     `json:"unplaced_count" bson:"unplaced_count"`
	PlacedVolume    float64 `json:"placed_volume" bson:"placed_volume"`
	ContainerVolume float64 `json:"container_volume" bson:"container_volume"`
	Utilization     float64 `json:"utilization" bson:"utilization"`
	MaxHeight       float64 `json:"max_height_z" bson:"max_height_z"`
}

// Params records the engine parameters a record was produced with, so
// the record can be re-verified without the original configuration.
type Params struct {
	SupportThreshold float64     `json:"support_threshold" bson:"support_threshold"`
	Epsilon          float64     `json:"epsilon" bson:"epsilon"`
	Order            OrderPolicy `json:"order" bson:"order"`
	MaxAttempts      int         `json:"max_attempts,omitempty" bson:"max_attempts,omitempty"`
}

// Record is the complete, self-contained result of a placement run.
// Placements appear in commit order.
type Record struct {
	Container  geom.Vec3      `json:"container" bson:"container"`
	Params     Params         `json:"params" bson:"params"`
	Placements []PlacedItem   `json:"placements" bson:"placements"`
	Unplaced   []UnplacedItem `json:"unplaced" bson:"unplaced"`
	Stats      Stats          `json:"stats" bson:"stats"`
}

// Boxes returns the placed boxes in commit order.
func (r *Record) Boxes() []geom.Box {
	boxes := make([]geom.Box, len(r.Placements))
	for i, p := range r.Placements {
		boxes[i] = p.Box()
	}
	return boxes
}

// computeStats derives the summary from the placement lists.
func (r *Record) computeStats() Stats {
	s := Stats{
		PlacedCount:     len(r.Placements),
		UnplacedCount:   len(r.Unplaced),
		ContainerVolume: r.Container.X * r.Container.Y * r.Container.Z,
	}
	for _, p := range r.Placements {
		box := p.Box()
		s.PlacedVolume += box.Volume()
		if top := box.Top(); top > s.MaxHeight {
			s.MaxHeight = top
		}
	}
	if s.ContainerVolume > 0 {
		s.Utilization = s.PlacedVolume / s.ContainerVolume
	}
	return s
}
