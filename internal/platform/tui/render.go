package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/sim"
)

// palette maps core colors to terminal colors. ColorDefault is absent and
// keeps the terminal foreground.
var palette = map[core.Color]lipgloss.Color{
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
}

var (
	soundCueStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("6"))
	animationCueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// cellStyle is the style one room tile is drawn with.
func cellStyle(c core.Cell) lipgloss.Style {
	style := lipgloss.NewStyle()
	if fg, ok := palette[c.Color]; ok {
		style = style.Foreground(fg)
	}
	return style.Faint(c.Dim)
}

// RenderScreen draws a room buffer as styled text. Runs of tiles that share
// a color and dimness are styled together.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		x := 0
		for x < s.Width() {
			first := s.GetCell(x, y)
			var run strings.Builder
			for x < s.Width() {
				c := s.GetCell(x, y)
				if c.Color != first.Color || c.Dim != first.Dim {
					break
				}
				run.WriteRune(c.Rune)
				x++
			}
			sb.WriteString(cellStyle(first).Render(run.String()))
		}
	}
	return sb.String()
}

// cueText lists cues as "kind: name", comma separated.
func cueText(cues []sim.Cue) string {
	names := make([]string, len(cues))
	for i, c := range cues {
		names[i] = string(c.Kind) + ": " + c.Name
	}
	return strings.Join(names, ", ")
}

// renderCues styles the cues of the last step by kind.
func renderCues(cues []sim.Cue) string {
	parts := make([]string, len(cues))
	for i, c := range cues {
		style := animationCueStyle
		if c.Kind == sim.CueSound {
			style = soundCueStyle
		}
		parts[i] = style.Render(string(c.Kind) + ": " + c.Name)
	}
	return strings.Join(parts, infoStyle.Render(", "))
}
