package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force    bool `help:"Overwrite existing files"`
	Scaffold bool `help:"Also write a starter site (pages, template, styles) next to the configuration"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	path := root.ConfigPath()
	if err := RunInit(path, i.Force); err != nil {
		return err
	}
	if !i.Scaffold {
		return nil
	}
	written, err := config.Scaffold(filepath.Dir(path), i.Force)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Printf("  created %s\n", p)
	}
	return nil
}

func RunInit(configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		fmt.Println("Initialization failed")
		return err
	}
	fmt.Println("initialized successfully")
	return nil
}
