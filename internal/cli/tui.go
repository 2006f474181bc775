package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cratestack/pkg/pack"
	"github.com/matzehuels/cratestack/pkg/render"
)

// Replay styles
var (
	replayDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	replayEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	replayInfoStyle  = lipgloss.NewStyle().Foreground(colorGray)
)

// autoplayInterval paces automatic stepping.
const autoplayInterval = 400 * time.Millisecond

// replayTickMsg advances autoplay by one step.
type replayTickMsg time.Time

// ReplayModel is the bubbletea model for stepping through a record's
// placements in commit order. The view is a top-down plan of the
// container: each cell shows the topmost box covering it, colored to
// match the SVG renderer.
type ReplayModel struct {
	Record  *pack.Record
	Step    int // number of placements shown, 0..len(Placements)
	Playing bool
	GridW   int // plan cells along x
	GridH   int // plan cells along y
}

// NewReplayModel creates a replay model showing the empty container.
func NewReplayModel(rec *pack.Record) ReplayModel {
	return ReplayModel{
		Record: rec,
		GridW:  32,
		GridH:  16,
	}
}

func (m ReplayModel) Init() tea.Cmd {
	return nil
}

func replayTick() tea.Cmd {
	return tea.Tick(autoplayInterval, func(t time.Time) tea.Msg {
		return replayTickMsg(t)
	})
}

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	total := len(m.Record.Placements)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			m.Playing = false
			if m.Step < total {
				m.Step++
			}
		case "left", "h", "p":
			m.Playing = false
			if m.Step > 0 {
				m.Step--
			}
		case "home", "g":
			m.Playing = false
			m.Step = 0
		case "end", "G":
			m.Playing = false
			m.Step = total
		case " ":
			m.Playing = !m.Playing
			if m.Playing {
				if m.Step >= total {
					m.Step = 0
				}
				return m, replayTick()
			}
		}
	case replayTickMsg:
		if !m.Playing {
			return m, nil
		}
		if m.Step < total {
			m.Step++
		}
		if m.Step >= total {
			m.Playing = false
			return m, nil
		}
		return m, replayTick()
	case tea.WindowSizeMsg:
		w := (msg.Width - 6) / 2
		if w >= 10 {
			m.GridW = min(w, 48)
		}
		h := msg.Height - 14
		if h >= 6 {
			m.GridH = min(h, 24)
		}
	}
	return m, nil
}

func (m ReplayModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Packing Replay"))
	b.WriteString("\n")
	b.WriteString(replayDimStyle.Render("←/→ step  space play/pause  g/G first/last  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.renderPlan())
	b.WriteString("\n")
	b.WriteString(m.renderStep())

	return b.String()
}

// renderPlan draws the top-down plan of the first Step placements.
// Cells sample box coverage at their centers; where boxes stack, the
// highest one wins, so towers read as their top layer.
func (m ReplayModel) renderPlan() string {
	rec := m.Record
	cellX := rec.Container.X / float64(m.GridW)
	cellY := rec.Container.Y / float64(m.GridH)

	var b strings.Builder
	border := replayDimStyle.Render(strings.Repeat("─", m.GridW*2))
	b.WriteString(replayDimStyle.Render("┌") + border + replayDimStyle.Render("┐") + "\n")

	// y runs upward in container coordinates, so draw rows top-down.
	for row := m.GridH - 1; row >= 0; row-- {
		cy := (float64(row) + 0.5) * cellY
		b.WriteString(replayDimStyle.Render("│"))
		for col := 0; col < m.GridW; col++ {
			cx := (float64(col) + 0.5) * cellX

			top := -1.0
			owner := -1
			for i := 0; i < m.Step; i++ {
				p := rec.Placements[i]
				if cx < p.Position.X || cx > p.Position.X+p.PlacedDims.X {
					continue
				}
				if cy < p.Position.Y || cy > p.Position.Y+p.PlacedDims.Y {
					continue
				}
				if z := p.Position.Z + p.PlacedDims.Z; z > top {
					top = z
					owner = i
				}
			}

			if owner < 0 {
				b.WriteString(replayEmptyStyle.Render("· "))
				continue
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(render.ColorFor(owner)))
			if owner == m.Step-1 {
				style = style.Bold(true)
			}
			b.WriteString(style.Render("██"))
		}
		b.WriteString(replayDimStyle.Render("│") + "\n")
	}
	b.WriteString(replayDimStyle.Render("└") + border + replayDimStyle.Render("┘") + "\n")
	return b.String()
}

// renderStep shows the current position in the run and details of the
// most recently committed placement.
func (m ReplayModel) renderStep() string {
	rec := m.Record
	total := len(rec.Placements)

	var b strings.Builder
	state := "paused"
	if m.Playing {
		state = "playing"
	}
	b.WriteString(replayInfoStyle.Render(fmt.Sprintf("  step %d/%d (%s)", m.Step, total, state)))
	b.WriteString("\n\n")

	if m.Step == 0 {
		b.WriteString(replayDimStyle.Render("  empty container, press → or space to begin"))
		b.WriteString("\n")
		return b.String()
	}

	p := rec.Placements[m.Step-1]
	swatch := lipgloss.NewStyle().
		Foreground(lipgloss.Color(render.ColorFor(m.Step - 1))).
		Render("██")

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(replayDimStyle).
		Rows(
			[]string{"item", swatch + " " + p.ID},
			[]string{"position", fmtVec(p.Position.X, p.Position.Y, p.Position.Z)},
			[]string{"dims", fmtVec(p.PlacedDims.X, p.PlacedDims.Y, p.PlacedDims.Z)},
			[]string{"top", fmt.Sprintf("%.4g", p.Position.Z+p.PlacedDims.Z)},
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return replayInfoStyle.PaddingLeft(1).PaddingRight(1)
			}
			return StyleValue.PaddingRight(1)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Step == total && len(rec.Unplaced) > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("  %d item(s) left unplaced", len(rec.Unplaced))))
		b.WriteString("\n")
	}
	return b.String()
}

func fmtVec(x, y, z float64) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", x, y, z)
}
