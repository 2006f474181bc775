// Package pack implements the deterministic placement engine.
//
// The engine fills a single rectangular container with boxes from a
// catalog, bottom-up under gravity. Every candidate placement must
// pass three checks:
//
//   - bounds: the box lies entirely inside the container
//   - overlap: the box shares no more than touching contact with any
//     committed box
//   - support: the supported fraction of the box's footprint meets the
//     configured threshold; the floor fully supports anything resting
//     on it
//
// # Candidate positions
//
// Candidates come from an extreme-point frontier. The frontier seeds
// with the container origin; each committed box at position p with
// extents e adds three successors: (p.x+e.x, p.y, p.z),
// (p.x, p.y+e.y, p.z) and (p.x, p.y, p.z+e.z). Points are deduplicated
// within tolerance and never removed, since a position infeasible for
// one item may admit a smaller one later. The scan order is ascending
// z, then y, then x, which is what packs floor-first.
//
// # Placement policy
//
// Items are attempted one at a time, largest volume first by default
// (ties keep catalog order). For each item the engine scans frontier
// points in order and the item's allowed orientations within each
// point, committing the first candidate that passes all checks. An
// item with no feasible candidate is recorded as unplaced with a
// reason and the run continues.
//
// The whole run is deterministic: the same catalog and configuration
// always produce the identical record.
package pack
