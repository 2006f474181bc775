// Package io provides JSON import and export for packing data.
//
// # Overview
//
// This package holds the serialization helpers shared by the CLI, the
// HTTP server, and the run store. The format is designed for:
//
//   - Feeding packing results to external tools and dashboards
//   - Caching computed records for faster re-rendering
//   - Round-trip preservation: export a record and re-import it identically
//
// # Record Format
//
// A packing record is a JSON object with the container, the parameters
// the run used, and the placement and rejection lists:
//
//	{
//	  "container": [100, 100, 100],
//	  "params": {"support_threshold": 1, "epsilon": 1e-06, "order": "volume-desc"},
//	  "placements": [
//	    {
//	      "id": "crate-1",
//	      "index": 0,
//	      "original_dims": [40, 40, 40],
//	      "orientation": "lwh",
//	      "placed_dims": [40, 40, 40],
//	      "position": [0, 0, 0]
//	    }
//	  ],
//	  "unplaced": [
//	    {"id": "beam", "dims": [150, 10, 10], "reason": "exceeds-container"}
//	  ],
//	  "stats": {...}
//	}
//
// Vectors serialize as [x, y, z] arrays. Placements appear in commit
// order; replaying them one by one reproduces the run.
//
// # Import and Export
//
// Use [ImportJSON] to read from a file path, or [ReadJSON] to read from
// any io.Reader:
//
//	var rec pack.Record
//	if err := io.ImportJSON("run.json", &rec); err != nil {
//	    log.Fatal(err)
//	}
//
// Use [ExportJSON] to write to a file, or [WriteJSON] to write to any
// io.Writer. Output is indented for humans; callers that need compact
// bytes should use encoding/json directly.
//
// The helpers are generic over the value type: records, catalogs, and
// run summaries all pass through unchanged. Structure validation is the
// caller's job (see pack.Verify for records).
package io
