package render

import (
	"os"

	"github.com/diogo/mcpchat/internal/config"
)

// EnvStyle overrides the configured markdown style
const EnvStyle = "GLAMOUR_STYLE"

// OptionsFromConfig builds render options from a loaded configuration.
// GLAMOUR_STYLE takes precedence over the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	// Booleans always overwrite defaults since the config carries explicit defaults
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv(EnvStyle); style != "" {
		opts.Style = style
	}

	return opts
}

// LoadOptionsFromConfig loads render options from the user configuration
// file, falling back to defaults when it cannot be read.
func LoadOptionsFromConfig() Options {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return OptionsFromConfig(cfg)
}
