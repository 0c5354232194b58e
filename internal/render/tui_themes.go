package render

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme of the chat and task views
type TUITheme struct {
	Name        string
	Description string

	// Base colors
	Surface lipgloss.Color
	Border  lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// Message bubbles
	UserBubble      lipgloss.Color
	AssistantBubble lipgloss.Color
	ErrorBubble     lipgloss.Color
}

// Built-in TUI themes
var (
	// TokyoNightTheme is the default dark theme
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night, dark with blue accents",

		Surface: lipgloss.Color("#24283b"),
		Border:  lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),

		UserBubble:      lipgloss.Color("#3d59a1"),
		AssistantBubble: lipgloss.Color("#24283b"),
		ErrorBubble:     lipgloss.Color("#5c2433"),
	}

	// CatppuccinMochaTheme uses the Catppuccin Mocha palette
	CatppuccinMochaTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha, warm pastels",

		Surface: lipgloss.Color("#313244"),
		Border:  lipgloss.Color("#45475a"),

		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#a6e3a1"),
		Accent:    lipgloss.Color("#cba6f7"),
		Warning:   lipgloss.Color("#f9e2af"),
		Error:     lipgloss.Color("#f38ba8"),

		Text:     lipgloss.Color("#cdd6f4"),
		TextDim:  lipgloss.Color("#6c7086"),
		TextMute: lipgloss.Color("#45475a"),

		UserBubble:      lipgloss.Color("#1e66f5"),
		AssistantBubble: lipgloss.Color("#313244"),
		ErrorBubble:     lipgloss.Color("#5e2a3a"),
	}

	// NordTheme uses the Nord palette
	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord, cool arctic tones",

		Surface: lipgloss.Color("#3b4252"),
		Border:  lipgloss.Color("#4c566a"),

		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),

		Text:     lipgloss.Color("#eceff4"),
		TextDim:  lipgloss.Color("#7b88a1"),
		TextMute: lipgloss.Color("#4c566a"),

		UserBubble:      lipgloss.Color("#5e81ac"),
		AssistantBubble: lipgloss.Color("#3b4252"),
		ErrorBubble:     lipgloss.Color("#6d3a40"),
	}

	// LightTheme mirrors the blue, white and red bubbles of a browser chat
	LightTheme = TUITheme{
		Name:        "light",
		Description: "Light, for bright terminals",

		Surface: lipgloss.Color("#f3f4f6"),
		Border:  lipgloss.Color("#d1d5db"),

		Primary:   lipgloss.Color("#2563eb"),
		Secondary: lipgloss.Color("#16a34a"),
		Accent:    lipgloss.Color("#7c3aed"),
		Warning:   lipgloss.Color("#d97706"),
		Error:     lipgloss.Color("#dc2626"),

		Text:     lipgloss.Color("#1f2937"),
		TextDim:  lipgloss.Color("#6b7280"),
		TextMute: lipgloss.Color("#9ca3af"),

		UserBubble:      lipgloss.Color("#3b82f6"),
		AssistantBubble: lipgloss.Color("#ffffff"),
		ErrorBubble:     lipgloss.Color("#fef2f2"),
	}
)

var (
	themeMu         sync.RWMutex
	currentTUITheme = TokyoNightTheme
	tuiThemes       = map[string]TUITheme{
		TokyoNightTheme.Name:      TokyoNightTheme,
		CatppuccinMochaTheme.Name: CatppuccinMochaTheme,
		NordTheme.Name:            NordTheme,
		LightTheme.Name:           LightTheme,
	}
)

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name. Unknown names leave the
// current theme in place and return false.
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTUITheme = theme
	themeMu.Unlock()
	return true
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	theme, ok := tuiThemes[name]
	return theme, ok
}

// TUIThemeNames returns the theme names, sorted
func TUIThemeNames() []string {
	names := make([]string, 0, len(tuiThemes))
	for name := range tuiThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
