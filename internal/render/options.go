// Package render turns assistant replies into styled terminal output and
// holds the color themes of the interactive views.
package render

// Options configures the markdown renderer. It is comparable and used as
// the renderer cache key.
type Options struct {
	// Width is the word wrap column (default: 80)
	Width int

	// Style is a glamour style name or a path to a JSON style
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            ThemeDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// WithWidth returns Options with the specified width. Widths below 20 are
// raised to 20 so narrow terminals still wrap sensibly.
func (o Options) WithWidth(width int) Options {
	if width < 20 {
		width = 20
	}
	o.Width = width
	return o
}

// WithStyle returns Options with a glamour style name or JSON style path.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
