package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/archlayout/pkg/classify"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle       = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Explanation table
// =============================================================================

// explainTable renders one row per node: assigned layer, winning score and
// how the layer was chosen.
func explainTable(explanations []classify.Explanation) string {
	rows := make([][]string, 0, len(explanations))
	for _, e := range explanations {
		rows = append(rows, []string{
			e.NodeID,
			e.Label,
			classify.Layer(e.Layer).String(),
			strconv.Itoa(e.MaxScore),
			source(e),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Label", "Layer", "Score", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(explanations) {
				return lipgloss.NewStyle()
			}
			e := explanations[row]
			switch {
			case col == 2 && e.Fallback != "":
				return lipgloss.NewStyle().Foreground(colorYellow)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorGreen)
			case col == 4:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func source(e classify.Explanation) string {
	switch {
	case e.Preassigned:
		return "preassigned"
	case e.Fallback != "":
		return e.Fallback
	case len(e.Hits) == 0:
		return "-"
	}
	best := e.Hits[0]
	for _, h := range e.Hits[1:] {
		if int(h.Layer) == e.Layer && (int(best.Layer) != e.Layer || h.Points > best.Points) {
			best = h
		}
	}
	return best.Rule
}

// =============================================================================
// ExplainModel - Interactive classification browser
// =============================================================================

// ExplainModel is the bubbletea model for browsing classification results.
// The left column lists nodes; the right shows per-layer scores and the rule
// hits of the selected node.
type ExplainModel struct {
	Explanations []classify.Explanation
	Cursor       int
	Offset       int
	Height       int
}

// NewExplainModel creates a browser over explanations.
func NewExplainModel(explanations []classify.Explanation) ExplainModel {
	return ExplainModel{Explanations: explanations, Height: 15}
}

func (m ExplainModel) Init() tea.Cmd {
	return nil
}

func (m ExplainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Explanations)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Explanations)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ExplainModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layer Classification"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if len(m.Explanations) == 0 {
		b.WriteString(listDimStyle.Render("no nodes"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Explanations))
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		e := m.Explanations[i]
		line := fmt.Sprintf("%-24s %s", truncate(e.NodeID, 24), classify.Layer(e.Layer))
		if i == m.Cursor {
			list.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			list.WriteString(listNormalStyle.Render("  " + line))
		}
		list.WriteString("\n")
	}

	detail := m.detail(m.Explanations[m.Cursor])
	left := lipgloss.NewStyle().Width(40).Render(list.String())
	right := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		Padding(0, 1).
		Render(detail)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Explanations))))
	return b.String()
}

func (m ExplainModel) detail(e classify.Explanation) string {
	var b strings.Builder
	b.WriteString(StyleValue.Bold(true).Render(e.Label))
	b.WriteString("\n")
	if e.Preassigned {
		b.WriteString(listDimStyle.Render("layer preassigned: " + classify.Layer(e.Layer).String()))
		return b.String()
	}
	for l, score := range e.Scores {
		name := fmt.Sprintf("%-14s", classify.Layer(l))
		bar := strings.Repeat("█", min(score/10, 20))
		line := fmt.Sprintf("%s %4d %s", name, score, bar)
		if l == e.Layer {
			b.WriteString(StyleSuccess.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if e.Fallback != "" {
		b.WriteString(StyleWarning.Render("fallback: " + e.Fallback))
		b.WriteString("\n")
	}
	for _, h := range e.Hits {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  +%d %s", h.Points, h.Rule)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
