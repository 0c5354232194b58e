package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/mcpchat/internal/api"
	"github.com/diogo/mcpchat/internal/chat"
	"github.com/diogo/mcpchat/internal/render"
	"github.com/diogo/mcpchat/internal/tui"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorWarning  = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)

// runQuery sends one message on a fresh session and prints the reply.
// With --raw only the reply text is printed, without decoration.
func (a *app) runQuery(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	if err := a.setup(false); err != nil {
		return err
	}
	defer a.close()

	client, err := a.newClient(api.WithTimeout(a.opts.timeout))
	if err != nil {
		return err
	}

	session := chat.New(client,
		chat.WithEndpoint(a.cfg.Endpoint),
		chat.WithLogger(a.logger),
	)

	raw := a.opts.raw
	stderr := a.deps.Stderr

	var spin *spinner
	if !raw {
		spin = newSpinner(stderr, "Waiting for "+a.cfg.Endpoint)
		spin.start()
	}

	done, _ := session.Submit(ctx, prompt)
	res := <-done

	if res.Err != nil {
		if raw {
			transcript := session.Transcript()
			fmt.Fprintln(stderr, transcript[len(transcript)-1].Content)
		} else {
			spin.stopWithError()
			tui.FprintError(stderr, res.Err)
		}
		return reportedError{fmt.Errorf("request failed: %w", res.Err)}
	}
	if !raw {
		spin.stopWithSuccess("Done")
	}

	a.logger.Debug("reply received",
		zap.String("request_id", res.Request.ID),
		zap.Int("length", len(res.Content)),
		zap.Duration("duration", time.Since(res.Request.Started)),
	)

	return a.printReply(res.Content)
}

// printReply writes the reply to --output or stdout
func (a *app) printReply(text string) error {
	stdout, stderr := a.deps.Stdout, a.deps.Stderr

	// Raw output mode: output only the raw text
	if a.opts.raw {
		if a.opts.output != "" {
			if err := os.WriteFile(a.opts.output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		}
		fmt.Fprint(stdout, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(stdout)
		}
		return nil
	}

	if a.cfg.CopyToClipboard {
		if err := a.deps.Clipboard(text); err != nil {
			// Log warning but don't fail
			warnMsg := lipgloss.NewStyle().Foreground(colorWarning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(stderr, clipMsg)
		}
	}

	if a.opts.output != "" {
		if err := os.WriteFile(a.opts.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Response saved to %s", a.opts.output),
		)
		fmt.Fprintln(stderr, successMsg)
		return nil
	}

	bubbleWidth := a.deps.TerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(stdout, assistantLabelStyle.Render("✦ Assistant"))

	content := text
	if a.cfg.RenderMarkdown {
		content = render.Reply(text, render.OptionsFromConfig(a.cfg).WithWidth(contentWidth))
	}
	fmt.Fprintln(stdout, assistantBubbleStyle.Width(bubbleWidth).Render(content))

	return nil
}
