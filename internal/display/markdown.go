package display

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders a complete answer for terminal output. Rendering
// failures fall back to the raw text so an odd document never loses content.
func RenderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
