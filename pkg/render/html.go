package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"text/template"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// replayPageHTML is the self-contained replay page. The record JSON is
// embedded directly; json.Marshal escapes <, >, and & so the payload
// is safe inside the script tag.
const replayPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: sans-serif; margin: 24px; background: #fafafa; color: #222; }
  h1 { font-size: 18px; margin-bottom: 4px; }
  #summary { color: #555; font-size: 13px; margin-bottom: 12px; }
  #controls { margin: 12px 0; display: flex; align-items: center; gap: 12px; }
  #step { font-variant-numeric: tabular-nums; color: #555; min-width: 16em; }
  #board { background: #fff; border: 1px solid #ccc; }
  button { padding: 4px 14px; font-size: 14px; }
  input[type=range] { width: 320px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div id="summary">container {{.Container}} &middot; {{.Placed}} placed, {{.Unplaced}} unplaced</div>
<div id="controls">
  <button id="play">Play</button>
  <input type="range" id="slider" min="0" max="{{.Steps}}" value="{{.Steps}}" step="1">
  <span id="step"></span>
</div>
<canvas id="board" width="{{.CanvasW}}" height="{{.CanvasH}}"></canvas>
<script>
const record = {{.RecordJSON}};
const palette = {{.PaletteJSON}};
const scale = {{.Scale}};

const canvas = document.getElementById('board');
const ctx = canvas.getContext('2d');
const slider = document.getElementById('slider');
const stepLabel = document.getElementById('step');
const playBtn = document.getElementById('play');
const total = record.placements.length;
let timer = null;

function draw(k) {
  ctx.clearRect(0, 0, canvas.width, canvas.height);
  ctx.strokeStyle = '#888';
  ctx.strokeRect(0.5, 0.5, record.container[0] * scale, record.container[1] * scale);
  for (let i = 0; i < k; i++) {
    const p = record.placements[i];
    const x = p.position[0] * scale;
    const y = (record.container[1] - p.position[1] - p.placed_dims[1]) * scale;
    const w = p.placed_dims[0] * scale;
    const h = p.placed_dims[1] * scale;
    ctx.globalAlpha = 0.9;
    ctx.fillStyle = palette[p.index % palette.length];
    ctx.fillRect(x, y, w, h);
    ctx.globalAlpha = 1;
    ctx.strokeStyle = '#333';
    ctx.strokeRect(x, y, w, h);
  }
  let label = k + ' / ' + total;
  if (k > 0) label += '  last: ' + record.placements[k - 1].id;
  stepLabel.textContent = label;
}

function stop() {
  if (timer) {
    clearInterval(timer);
    timer = null;
    playBtn.textContent = 'Play';
  }
}

slider.addEventListener('input', () => {
  stop();
  draw(Number(slider.value));
});

playBtn.addEventListener('click', () => {
  if (timer) {
    stop();
    return;
  }
  if (Number(slider.value) >= total) slider.value = 0;
  playBtn.textContent = 'Pause';
  timer = setInterval(() => {
    const next = Number(slider.value) + 1;
    slider.value = next;
    draw(next);
    if (next >= total) stop();
  }, 400);
});

draw(total);
</script>
</body>
</html>
`

var replayTmpl = template.Must(template.New("replay").Parse(replayPageHTML))

// formatDims renders container extents for display, trimming
// trailing zeros so whole-number containers read cleanly.
func formatDims(x, y, z float64) string {
	return fmt.Sprintf("%gx%gx%g", x, y, z)
}

// RenderHTML builds a self-contained replay page for a record: a
// plan-view canvas with a slider and autoplay that steps through the
// placements in commit order. The page loads no external assets.
func RenderHTML(rec *pack.Record) ([]byte, error) {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode record")
	}
	paletteJSON, err := json.Marshal(palette)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode palette")
	}

	// Fit the plan view into roughly 480px, whatever the container size.
	maxDim := rec.Container.X
	if rec.Container.Y > maxDim {
		maxDim = rec.Container.Y
	}
	scale := svgDefaultScale
	if maxDim > 0 {
		scale = 480 / maxDim
	}

	data := struct {
		Title       string
		Container   string
		Placed      int
		Unplaced    int
		Steps       int
		CanvasW     int
		CanvasH     int
		Scale       float64
		RecordJSON  string
		PaletteJSON string
	}{
		Title:       "cratestack replay",
		Container:   formatDims(rec.Container.X, rec.Container.Y, rec.Container.Z),
		Placed:      len(rec.Placements),
		Unplaced:    len(rec.Unplaced),
		Steps:       len(rec.Placements),
		CanvasW:     int(math.Ceil(rec.Container.X*scale)) + 1,
		CanvasH:     int(math.Ceil(rec.Container.Y*scale)) + 1,
		Scale:       scale,
		RecordJSON:  string(recordJSON),
		PaletteJSON: string(paletteJSON),
	}

	var buf bytes.Buffer
	if err := replayTmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render replay page")
	}
	return buf.Bytes(), nil
}
