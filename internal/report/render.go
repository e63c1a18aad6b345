package report

import (
	"github.com/charmbracelet/glamour"
)

// noMarginStyle removes glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer turns report markdown into styled terminal output.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewRenderer creates a renderer with the given wrap width and style
// ("dark" or "light", default "dark"). A fixed style path avoids glamour's
// terminal background query.
func NewRenderer(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render styles markdown for the terminal.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}
