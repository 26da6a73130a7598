package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/realtime"
)

// Palette is the set of colours a theme draws with
type Palette struct {
	Primary   lipgloss.Color
	Surface   lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	Border    lipgloss.Color
	Danger    lipgloss.Color
	Success   lipgloss.Color
}

var (
	darkPalette = Palette{
		Primary:   lipgloss.Color("#4ECDC4"),
		Surface:   lipgloss.Color("#16213e"),
		Text:      lipgloss.Color("#FFFFFF"),
		TextMuted: lipgloss.Color("#888888"),
		Border:    lipgloss.Color("#333333"),
		Danger:    lipgloss.Color("#FF6B6B"),
		Success:   lipgloss.Color("#95E1A3"),
	}
	lightPalette = Palette{
		Primary:   lipgloss.Color("#0F766E"),
		Surface:   lipgloss.Color("#E2E8F0"),
		Text:      lipgloss.Color("#1F2937"),
		TextMuted: lipgloss.Color("#6B7280"),
		Border:    lipgloss.Color("#CBD5E1"),
		Danger:    lipgloss.Color("#DC2626"),
		Success:   lipgloss.Color("#15803D"),
	}
)

// Priority colors
var priorityColors = map[model.Priority]lipgloss.Color{
	model.PriorityCritical: lipgloss.Color("#FF6B6B"),
	model.PriorityHigh:     lipgloss.Color("#FFB347"),
	model.PriorityMedium:   lipgloss.Color("#FFE66D"),
	model.PriorityLow:      lipgloss.Color("#4ECDC4"),
}

// Styles holds every style the views render with
type Styles struct {
	Palette Palette

	Header     lipgloss.Style
	Column     lipgloss.Style
	ColumnHead lipgloss.Style
	Task       lipgloss.Style
	TaskCursor lipgloss.Style
	TaskDone   lipgloss.Style
	Overdue    lipgloss.Style
	Muted      lipgloss.Style
	StatusBar  lipgloss.Style
	Modal      lipgloss.Style
	Error      lipgloss.Style
	Info       lipgloss.Style
	Panel      lipgloss.Style
}

// NewStyles builds the styles of a theme
func NewStyles(theme board.Theme) Styles {
	p := lightPalette
	if theme == board.ThemeDark {
		p = darkPalette
	}

	return Styles{
		Palette: p,
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			Padding(0, 1),
		Column: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(p.Border).
			Padding(0, 1),
		ColumnHead: lipgloss.NewStyle().Bold(true),
		Task: lipgloss.NewStyle().
			Foreground(p.Text),
		TaskCursor: lipgloss.NewStyle().
			Background(p.Surface).
			Foreground(p.Text).
			Bold(true),
		TaskDone: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Strikethrough(true),
		Overdue: lipgloss.NewStyle().Foreground(p.Danger),
		Muted:   lipgloss.NewStyle().Foreground(p.TextMuted),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(p.Border),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),
		Error: lipgloss.NewStyle().Foreground(p.Danger).Bold(true),
		Info:  lipgloss.NewStyle().Foreground(p.Success),
		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(p.Border).
			Padding(0, 1),
	}
}

// Priority renders a priority badge
func (s Styles) Priority(p model.Priority) string {
	style := lipgloss.NewStyle().Foreground(priorityColors[p])
	if p.Rank() >= model.PriorityHigh.Rank() {
		style = style.Bold(true)
	}
	label := string(p)
	if label == "" {
		label = "-"
	}
	return style.Render(label)
}

// Notice renders a transient notice by level
func (s Styles) Notice(n realtime.Notice) string {
	if n.Level == realtime.LevelError {
		return s.Error.Render(n.Message)
	}
	return s.Info.Render(n.Message)
}
