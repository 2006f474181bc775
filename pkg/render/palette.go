package render

// palette holds the item colors shared by the SVG, replay, and TUI
// output. Colors are assigned by placement index and wrap around when
// a record has more items than colors.
var palette = []string{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00",
	"#ffff33", "#a65628", "#f781bf", "#999999", "#66c2a5",
	"#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f",
	"#e5c494", "#b3b3b3", "#1b9e77", "#d95f02", "#7570b3",
}

// ColorFor returns the display color for a placement index.
func ColorFor(index int) string {
	if index < 0 {
		index = 0
	}
	return palette[index%len(palette)]
}

// PaletteSize returns the number of distinct item colors.
func PaletteSize() int {
	return len(palette)
}
