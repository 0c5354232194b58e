package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/mcpchat/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		Long: `Show or change the settings stored in ~/.mcpchat/config.json.

Environment variables (MCPCHAT_ENDPOINT, MCPCHAT_API_URL, VITE_API_URL,
MCPCHAT_LOG_LEVEL) override the file and are never written back.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(a.deps.Stdout, string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.deps.Stdout, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-endpoint <url>",
		Short: "Set the chat endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateURL(args[0], "http", "https", "ws", "wss"); err != nil {
				return err
			}
			return a.saveSetting("endpoint", args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-api-url <url>",
		Short: "Set the task API base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateURL(args[0], "http", "https"); err != nil {
				return err
			}
			return a.saveSetting("api_url", args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(config.SettableKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "endpoint" {
				if err := validateURL(args[1], "http", "https", "ws", "wss"); err != nil {
					return err
				}
			}
			return a.saveSetting(args[0], args[1])
		},
	})

	return cmd
}

// saveSetting updates one key in the config file
func (a *app) saveSetting(key, value string) error {
	cfg, err := config.LoadFileConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.deps.Stdout, "%s set to %s\n", key, value)
	return nil
}

// validateURL checks that raw is an absolute URL with one of schemes
func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid URL %q", raw)
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return nil
		}
	}
	return fmt.Errorf("unsupported scheme %q (want %s)", u.Scheme, strings.Join(schemes, ", "))
}
