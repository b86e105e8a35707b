// Package config loads the site configuration file (sitegen.yaml).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/metadata"
	"git.home.luguber.info/inful/sitegen/internal/paths"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "sitegen.yaml"

// Config is the site configuration. It is read-only once loaded.
type Config struct {
	Paths PathsConfig `yaml:"paths"`
	// Site is handed to templates as-is; "title" also feeds page titles.
	Site map[string]any `yaml:"site,omitempty"`
	// StyleSheets and Scripts are linked from every page. Entries are paths
	// relative to the destination root or absolute URLs.
	StyleSheets []string     `yaml:"style_sheets,omitempty"`
	Scripts     []string     `yaml:"scripts,omitempty"`
	CustomKeys  []string     `yaml:"custom_keys,omitempty"`
	Styles      []StyleEntry `yaml:"styles,omitempty"`
	Hook        string       `yaml:"hook,omitempty"`
	Dev         DevConfig    `yaml:"dev"`
	Notify      NotifyConfig `yaml:"notify,omitempty"`
	Sass        SassConfig   `yaml:"sass,omitempty"`

	// Templates are loaded from Paths.Templates.
	Templates render.Templates `yaml:"-"`
	// Root is the directory relative paths were resolved against.
	Root string `yaml:"-"`
}

// PathsConfig locates the source trees and the output tree.
type PathsConfig struct {
	Pages     string `yaml:"pages"`
	Assets    string `yaml:"assets"`
	Styles    string `yaml:"styles"`
	Templates string `yaml:"templates"`
	Dest      string `yaml:"dest"`
}

// StyleEntry is one style entry point. Src is relative to the styles tree,
// Dest to the destination root.
type StyleEntry struct {
	Src  string `yaml:"src"`
	Dest string `yaml:"dest"`
	// Syntax overrides detection from the Src extension (scss, sass, css).
	Syntax string `yaml:"syntax,omitempty"`
}

// DevConfig configures the dev command.
type DevConfig struct {
	Port       int  `yaml:"port"`
	LiveReload bool `yaml:"live_reload"`
	// ResyncInterval schedules a full rescan of the pages tree; 0 disables it.
	ResyncInterval time.Duration `yaml:"resync_interval,omitempty"`
	Metrics        bool          `yaml:"metrics,omitempty"`
}

// NotifyConfig enables publishing reload notifications on NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// SassConfig configures the Dart Sass compiler.
type SassConfig struct {
	// Binary is the dart-sass executable; empty searches PATH.
	Binary      string `yaml:"binary,omitempty"`
	OutputStyle string `yaml:"output_style,omitempty"`
}

// Load reads the configuration file at configPath. Relative paths inside it
// are resolved against the file's directory.
func Load(configPath string) (*Config, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, serrors.ConfigInvalid(configPath, err)
	}
	dir := filepath.Dir(abs)
	loadEnvFiles(dir)

	data, err := os.ReadFile(abs) // #nosec G304 -- user supplied config path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.ConfigNotFound(configPath)
		}
		return nil, serrors.ConfigInvalid(configPath, err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	cfg := defaults()
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, serrors.ConfigInvalid(configPath, fmt.Errorf("failed to unmarshal config: %w", err))
	}
	if err := cfg.finalize(dir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the conventional configuration for a site rooted at root,
// used when no configuration file exists.
func Default(root string) (*Config, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, serrors.ConfigInvalid(root, err)
	}
	loadEnvFiles(abs)
	cfg := defaults()
	if err := cfg.finalize(abs); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configPath, falling back to Default for its directory
// when the file does not exist and required is false.
func LoadOrDefault(configPath string, required bool) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) && !required {
		return Default(filepath.Dir(configPath))
	}
	return Load(configPath)
}

func (c *Config) finalize(root string) error {
	c.Root = root
	c.Paths.Pages = resolve(root, c.Paths.Pages)
	c.Paths.Assets = resolve(root, c.Paths.Assets)
	c.Paths.Styles = resolve(root, c.Paths.Styles)
	c.Paths.Templates = resolve(root, c.Paths.Templates)
	c.Paths.Dest = resolve(root, c.Paths.Dest)

	if err := c.validate(); err != nil {
		return err
	}

	tpls, err := render.LoadTemplates(c.Paths.Templates)
	if err != nil {
		return serrors.ConfigInvalid(c.Paths.Templates, err)
	}
	c.Templates = tpls
	return nil
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// SiteTitle returns site.title, or "".
func (c *Config) SiteTitle() string {
	title, _ := c.Site["title"].(string)
	return title
}

// MetadataOptions returns the composer options of the site. Project local
// style sheets and scripts are resolved against the destination root.
func (c *Config) MetadataOptions() metadata.Options {
	return metadata.Options{
		StyleSheets: c.destRefs(c.StyleSheets),
		Scripts:     c.destRefs(c.Scripts),
		CustomKeys:  c.CustomKeys,
		SiteTitle:   c.SiteTitle(),
	}
}

func (c *Config) destRefs(refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if paths.IsAbsoluteURL(ref) {
			out = append(out, ref)
			continue
		}
		out = append(out, filepath.Join(c.Paths.Dest, filepath.FromSlash(ref)))
	}
	return out
}
