package config

import (
	"fmt"
	"os"
	"strings"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// validate checks the resolved configuration. A missing pages tree is fatal;
// the other source trees are optional.
func (c *Config) validate() error {
	if info, err := os.Stat(c.Paths.Pages); err != nil || !info.IsDir() {
		return serrors.MissingDirectory("pages", c.Paths.Pages)
	}
	if c.Paths.Dest == "" {
		return serrors.ValidationFailed("paths.dest", "must not be empty")
	}
	for _, src := range []string{c.Paths.Pages, c.Paths.Assets, c.Paths.Styles} {
		if src != "" && (paths.Within(src, c.Paths.Dest) || paths.Within(c.Paths.Dest, src)) {
			return serrors.ValidationFailed("paths.dest", fmt.Sprintf("overlaps source tree %s", src))
		}
	}
	if c.Dev.Port <= 0 || c.Dev.Port > 65535 {
		return serrors.ValidationFailed("dev.port", fmt.Sprintf("out of range: %d", c.Dev.Port))
	}
	if c.Dev.ResyncInterval < 0 {
		return serrors.ValidationFailed("dev.resync_interval", "must not be negative")
	}
	switch strings.ToLower(c.Sass.OutputStyle) {
	case "", "expanded", "compressed":
	default:
		return serrors.ValidationFailed("sass.output_style", "must be expanded or compressed")
	}
	for i, s := range c.Styles {
		if s.Src == "" || s.Dest == "" {
			return serrors.ValidationFailed(fmt.Sprintf("styles[%d]", i), "src and dest are required")
		}
		switch strings.ToLower(s.Syntax) {
		case "", "scss", "sass", "css":
		default:
			return serrors.ValidationFailed(fmt.Sprintf("styles[%d].syntax", i), "must be scss, sass or css")
		}
	}
	return nil
}
