package theme

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	renderer *lipgloss.Renderer

	border    lipgloss.TerminalColor
	highlight lipgloss.TerminalColor
	brand     lipgloss.TerminalColor
	error     lipgloss.TerminalColor
	body      lipgloss.TerminalColor
	accent    lipgloss.TerminalColor
	muted     lipgloss.TerminalColor

	base lipgloss.Style
}

// BasicTheme builds the default palette. highlight overrides the brand color
// for selections when set.
func BasicTheme(renderer *lipgloss.Renderer, highlight *string) Theme {
	t := Theme{
		renderer: renderer,
	}

	t.border = lipgloss.AdaptiveColor{Dark: "#2F3B2F", Light: "#C9D6C3"}
	t.body = lipgloss.AdaptiveColor{Dark: "#A3B18A", Light: "#5A6B4B"}
	t.accent = lipgloss.AdaptiveColor{Dark: "#F1F5EC", Light: "#1B2416"}
	t.muted = lipgloss.AdaptiveColor{Dark: "#5C6B57", Light: "#9AA894"}
	t.brand = lipgloss.Color("#22C55E") // green tea
	if highlight != nil {
		t.highlight = lipgloss.Color(*highlight)
	} else {
		t.highlight = t.brand
	}
	t.error = lipgloss.Color("#EF4444")

	t.base = renderer.NewStyle().Foreground(t.body)

	return t
}

func (t Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

func (t Theme) Body() lipgloss.TerminalColor {
	return t.body
}

func (t Theme) Highlight() lipgloss.TerminalColor {
	return t.highlight
}

func (t Theme) Brand() lipgloss.TerminalColor {
	return t.brand
}

func (t Theme) Accent() lipgloss.TerminalColor {
	return t.accent
}

func (t Theme) Border() lipgloss.TerminalColor {
	return t.border
}

func (t Theme) Base() lipgloss.Style {
	return t.base
}

func (t Theme) TextBody() lipgloss.Style {
	return t.Base().Foreground(t.body)
}

func (t Theme) TextAccent() lipgloss.Style {
	return t.Base().Foreground(t.accent)
}

func (t Theme) TextHighlight() lipgloss.Style {
	return t.Base().Foreground(t.highlight)
}

func (t Theme) TextBrand() lipgloss.Style {
	return t.Base().Foreground(t.brand)
}

func (t Theme) TextMuted() lipgloss.Style {
	return t.Base().Foreground(t.muted)
}

func (t Theme) TextError() lipgloss.Style {
	return t.Base().Foreground(t.error)
}

func (t Theme) PanelError() lipgloss.Style {
	return t.Base().Background(t.error).Foreground(t.accent)
}
