package config

// Conventional layout of a site.
const (
	DefaultPagesDir     = "src/pages"
	DefaultAssetsDir    = "src/assets"
	DefaultStylesDir    = "src/styles"
	DefaultTemplatesDir = "src/templates"
	DefaultDestDir      = "public"
	DefaultHook         = "default"
	DefaultPort         = 3000
	DefaultSubject      = "sitegen.reload"
)

func defaults() *Config {
	return &Config{
		Paths: PathsConfig{
			Pages:     DefaultPagesDir,
			Assets:    DefaultAssetsDir,
			Styles:    DefaultStylesDir,
			Templates: DefaultTemplatesDir,
			Dest:      DefaultDestDir,
		},
		Hook: DefaultHook,
		Dev: DevConfig{
			Port:       DefaultPort,
			LiveReload: true,
		},
		Notify: NotifyConfig{Subject: DefaultSubject},
		Sass:   SassConfig{OutputStyle: "expanded"},
	}
}
