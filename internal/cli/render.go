package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/prefs"
)

// Palette holds the colours for one display theme.
type Palette struct {
	Border  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	OK      lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
}

var (
	darkPalette = Palette{
		Border:  lipgloss.Color("#282726"),
		Text:    lipgloss.Color("#FFFCF0"),
		Muted:   lipgloss.Color("#6F6E69"),
		Accent:  lipgloss.Color("#3AA99F"),
		OK:      lipgloss.Color("#879A39"),
		Warning: lipgloss.Color("#DA702C"),
		Danger:  lipgloss.Color("#D14D41"),
	}
	lightPalette = Palette{
		Border:  lipgloss.Color("#CECDC3"),
		Text:    lipgloss.Color("#100F0F"),
		Muted:   lipgloss.Color("#878580"),
		Accent:  lipgloss.Color("#24837B"),
		OK:      lipgloss.Color("#66800B"),
		Warning: lipgloss.Color("#BC5215"),
		Danger:  lipgloss.Color("#AF3029"),
	}
)

// PaletteFor returns the palette of theme.
func PaletteFor(theme prefs.Theme) Palette {
	if theme == prefs.ThemeDark {
		return darkPalette
	}
	return lightPalette
}

// Renderer renders command output in one palette.
type Renderer struct {
	p Palette
}

// NewRenderer returns a renderer for theme.
func NewRenderer(theme prefs.Theme) Renderer {
	return Renderer{p: PaletteFor(theme)}
}

// Title renders a centered title bar in a bordered box.
func (r Renderer) Title(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.p.Border).
		Width(45).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(lipgloss.NewStyle().Bold(true).Foreground(r.p.Text).Render(title))
}

// Header renders a section heading.
func (r Renderer) Header(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(r.p.Accent).Render(s)
}

// Muted renders secondary text.
func (r Renderer) Muted(s string) string {
	return lipgloss.NewStyle().Foreground(r.p.Muted).Render(s)
}

// Tone renders s in the colour of a budget tone.
func (r Renderer) Tone(tone calc.Tone, s string) string {
	color := r.p.OK
	switch tone {
	case calc.ToneWarning:
		color = r.p.Warning
	case calc.ToneDanger:
		color = r.p.Danger
	}
	return lipgloss.NewStyle().Foreground(color).Render(s)
}

// Warn renders s in the warning colour.
func (r Renderer) Warn(s string) string {
	return r.Tone(calc.ToneWarning, s)
}

// Error renders s in the danger colour.
func (r Renderer) Error(s string) string {
	return r.Tone(calc.ToneDanger, s)
}

// Table renders rows under headers with columns padded to their widest cell.
func (r Renderer) Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	head := lipgloss.NewStyle().Bold(true).Foreground(r.p.Accent)
	var b strings.Builder
	b.WriteString("  ")
	for i, h := range headers {
		b.WriteString(head.Render(pad(h, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("  ")
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(pad(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
