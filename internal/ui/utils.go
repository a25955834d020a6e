package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// IsErrorTerminal reports whether stderr is a terminal.
func IsErrorTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// ConfigureColor turns styling off when output is not a terminal, when
// NO_COLOR is set, or when the user asked for plain output.
func ConfigureColor(plain bool) {
	if plain || os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Panel is a bordered box with an optional title.
type Panel struct {
	Title       string
	Content     string
	BorderColor lipgloss.Color
	Width       int
}

// NewPanel creates a new panel with default styling.
func NewPanel(title, content string) *Panel {
	return &Panel{
		Title:       title,
		Content:     content,
		BorderColor: ColorSecondary,
	}
}

// WithBorderColor sets the border color and returns the panel.
func (p *Panel) WithBorderColor(color lipgloss.Color) *Panel {
	p.BorderColor = color
	return p
}

// Render returns the styled panel as a string.
func (p *Panel) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.BorderColor).
		Padding(0, 1)
	if p.Width > 0 {
		style = style.Width(p.Width)
	}

	content := p.Content
	if p.Title != "" {
		content = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render(p.Title) + "\n" + p.Content
	}
	return style.Render(content)
}

// RenderSuccessPanel renders a panel with a green border.
func RenderSuccessPanel(title, content string) string {
	return NewPanel(title, content).WithBorderColor(ColorSuccess).Render()
}

// RenderErrorPanel renders a panel with a red border and a cross before the title.
func RenderErrorPanel(title, content string) string {
	if title != "" {
		title = Icon("✗", StyleError) + " " + title
	}
	return NewPanel(title, content).WithBorderColor(ColorError).Render()
}
