package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return serrors.ValidationFailed("config", fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath))
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return serrors.ConfigInvalid(configPath, err)
	}

	example := Example()
	data, err := yaml.Marshal(&example)
	if err != nil {
		return serrors.InternalError("failed to marshal config", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil { //nolint:gosec // config is not sensitive
		return serrors.ConfigInvalid(configPath, err)
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() Config {
	cfg := *defaults()
	cfg.Site = map[string]any{
		"title":       "My Web Site",
		"description": "Built with sitegen",
	}
	cfg.StyleSheets = []string{"style.css"}
	cfg.Scripts = []string{
		"https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js",
	}
	cfg.CustomKeys = []string{"date", "categories", "tags", "template"}
	cfg.Styles = []StyleEntry{{Src: "main.scss", Dest: "style.css"}}
	cfg.Hook = "templated"
	cfg.Dev.ResyncInterval = 5 * time.Minute
	return cfg
}
