package markdown

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

const defaultWrapWidth = 80

// Terminal renders content with colours for display in a terminal pane.
func Terminal(content string, width int) (string, error) {
	if width <= 0 {
		width = defaultWrapWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return "", err
	}

	return r.Render(content)
}
