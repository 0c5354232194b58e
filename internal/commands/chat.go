package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/mcpchat/internal/chat"
	"github.com/diogo/mcpchat/internal/render"
	"github.com/diogo/mcpchat/internal/tui"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the backend.

Enter sends, Ctrl+L or /clear clears the conversation, Ctrl+E edits the
endpoint, Ctrl+Y copies the last reply. Type 'exit', 'quit', or press
Esc or Ctrl+C to end the session.

The log is written to ~/.mcpchat/mcpchat.log while the chat is open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat()
		},
	}
}

func (a *app) runChat() error {
	if err := a.setup(true); err != nil {
		return err
	}
	defer a.close()

	client, err := a.newClient()
	if err != nil {
		return err
	}

	if !render.SetTUITheme(a.cfg.TUITheme) {
		a.logger.Warn("unknown tui theme, using default", zap.String("theme", a.cfg.TUITheme))
	}
	tui.UpdateTheme()

	session := chat.New(client,
		chat.WithEndpoint(a.cfg.Endpoint),
		chat.WithLogger(a.logger),
	)
	a.logger.Info("chat started", zap.String("endpoint", a.cfg.Endpoint))

	return a.deps.TUI.RunChat(session, tui.ChatOptions{
		Markdown:  a.cfg.RenderMarkdown,
		Render:    render.OptionsFromConfig(a.cfg),
		Logger:    a.logger,
		Clipboard: a.deps.Clipboard,
	})
}
