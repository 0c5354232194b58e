package render

import (
	"strings"

	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names accepted by Options.Style besides a JSON file path
const (
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeTokyoNight = "tokyo-night"
	ThemeDracula    = "dracula"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// styleAliases maps alternative spellings to glamour style names
var styleAliases = map[string]string{
	"tokyonight":  ThemeTokyoNight,
	"tokyo_night": ThemeTokyoNight,
	"plain":       ThemeNoTTY,
}

// ResolveStyle normalises a style name. Unknown names are returned as-is
// and treated as a path to a JSON style by glamour.
func ResolveStyle(style string) string {
	s := strings.TrimSpace(style)
	if s == "" {
		return ThemeDark
	}
	if alias, ok := styleAliases[strings.ToLower(s)]; ok {
		return alias
	}
	if _, ok := styles.DefaultStyles[strings.ToLower(s)]; ok {
		return strings.ToLower(s)
	}
	return s
}

// IsBuiltinStyle reports whether style names a glamour standard style
func IsBuiltinStyle(style string) bool {
	_, ok := styles.DefaultStyles[ResolveStyle(style)]
	return ok
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the markdown styles shown by `config show`.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
