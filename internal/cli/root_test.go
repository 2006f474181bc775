package cli

import (
	"io"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	got := map[string]bool{}
	for _, cmd := range root.Commands() {
		got[cmd.Name()] = true
	}

	for _, name := range []string{
		"pack", "obb", "render", "verify", "replay",
		"history", "serve", "cache", "completion",
	} {
		if !got[name] {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestParseDims(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [3]float64
		wantErr bool
	}{
		{name: "integers", input: "120x80x100", want: [3]float64{120, 80, 100}},
		{name: "decimals", input: "1.5x2.5x3", want: [3]float64{1.5, 2.5, 3}},
		{name: "uppercase separator", input: "10X20X30", want: [3]float64{10, 20, 30}},
		{name: "spaces", input: "10 x 20 x 30", want: [3]float64{10, 20, 30}},
		{name: "two dims", input: "10x20", wantErr: true},
		{name: "four dims", input: "10x20x30x40", wantErr: true},
		{name: "zero dim", input: "10x0x30", wantErr: true},
		{name: "negative dim", input: "10x-5x30", wantErr: true},
		{name: "not a number", input: "axbxc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDims(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDims(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseDims(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestArtifactExt(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"svg", "svg"},
		{"png", "png"},
		{"pdf", "pdf"},
		{"html", "html"},
		{"dot", "dot"},
		{"charts", "charts.html"},
	}
	for _, tt := range tests {
		if got := artifactExt(tt.format); got != tt.want {
			t.Errorf("artifactExt(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
