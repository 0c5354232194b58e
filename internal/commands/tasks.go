package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/mcpchat/internal/tui"
)

func newTasksCmd(a *app) *cobra.Command {
	var (
		apiURL     string
		asJSON     bool
		useBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks from the task API",
		Long: `List the tasks served at <api-url>/api/mcp/tasks.

Use --tui for a browsable view that can be reloaded with 'r'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(useBrowser); err != nil {
				return err
			}
			defer a.close()

			baseURL := a.cfg.APIURL
			if apiURL != "" {
				baseURL = apiURL
			}

			client, err := a.newClient()
			if err != nil {
				return err
			}

			if useBrowser {
				return a.deps.TUI.RunTasks(client, baseURL)
			}

			list, err := client.FetchTasks(cmd.Context(), baseURL)
			if err != nil {
				return fmt.Errorf("failed to fetch tasks: %w", err)
			}
			a.logger.Debug("tasks fetched", zap.Int("count", len(list.Tasks)), zap.Int("total", list.Total))

			out := a.deps.Stdout
			switch {
			case asJSON:
				data, err := json.MarshalIndent(list, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal tasks: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case a.deps.StdoutTTY != nil && a.deps.StdoutTTY():
				if len(list.Tasks) == 0 {
					fmt.Fprintln(out, "No tasks")
					return nil
				}
				fmt.Fprintln(out, tui.RenderTaskList(list))
			default:
				for _, line := range list.Lines() {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Task API base URL (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the task list as JSON")
	cmd.Flags().BoolVar(&useBrowser, "tui", false, "Open the interactive task view")

	return cmd
}
