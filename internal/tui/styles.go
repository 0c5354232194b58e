// Package tui provides the terminal user interface for mcpchat.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/mcpchat/internal/errors"
	"github.com/diogo/mcpchat/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color

	colorUserBubble      lipgloss.Color
	colorAssistantBubble lipgloss.Color
	colorErrorBubble     lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	// Failed requests are shown in their own bubble, labelled "Error"
	errorBubbleStyle lipgloss.Style
	errorLabelStyle  lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style

	endpointPanelStyle lipgloss.Style
	endpointLabelStyle lipgloss.Style

	loadingStyle lipgloss.Style
	noticeStyle  lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style

	// Task list
	taskIndexStyle  lipgloss.Style
	taskTitleStyle  lipgloss.Style
	taskStatusStyle map[string]lipgloss.Style
)

// Gradient colors for the loading animation (fixed colors)
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles based on the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute
	colorUserBubble = theme.UserBubble
	colorAssistantBubble = theme.AssistantBubble
	colorErrorBubble = theme.ErrorBubble

	rebuildStyles()
}

// rebuildStyles creates all lipgloss styles with current color values
func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1)

	// User messages sit on the right like the browser layout
	userBubbleStyle = lipgloss.NewStyle().
		Background(colorUserBubble).
		Foreground(lipgloss.Color("#ffffff")).
		Padding(0, 1).
		MarginLeft(8)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(8)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Background(colorAssistantBubble).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(8)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	errorBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Background(colorErrorBubble).
		Foreground(colorError).
		Padding(0, 1).
		MarginRight(8)

	errorLabelStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginTop(1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginRight(1)

	endpointPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Background(colorSurface).
		Padding(0, 1)

	endpointLabelStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Italic(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		MarginTop(1)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Align(lipgloss.Center)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Align(lipgloss.Center)

	welcomeIconStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Align(lipgloss.Center)

	taskIndexStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Width(4).
		Align(lipgloss.Right)

	taskTitleStyle = lipgloss.NewStyle().
		Foreground(colorText)

	taskStatusStyle = map[string]lipgloss.Style{
		"To Do":       lipgloss.NewStyle().Foreground(colorWarning),
		"In Progress": lipgloss.NewStyle().Foreground(colorPrimary),
		"Done":        lipgloss.NewStyle().Foreground(colorSecondary),
	}
}

// statusStyle returns the style of a task status, dim for unknown values
func statusStyle(status string) lipgloss.Style {
	if s, ok := taskStatusStyle[status]; ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(colorTextDim)
}

// FormatError returns a styled error message with the details carried by
// a RequestFailure.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := errors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	}

	if _, ok := errors.AsRequestFailure(err); ok {
		sb.WriteString(dimStyle.Render("\n  Hint: " + errors.ReachabilityHint))
	}

	return sb.String()
}

// PrintError writes a styled error message to stderr.
func PrintError(err error) {
	FprintError(os.Stderr, err)
}

// FprintError writes a styled error message to w.
func FprintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err))
}
