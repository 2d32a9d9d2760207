// Package system holds setup, diagnostics and long-running commands.
package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/config"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing SQLite cache before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Provider.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized weekgrid cache at: %s\n", ctx.Provider.GetConfigPath())

	written, err := config.WriteDefault(ctx.ConfigPath)
	if err != nil {
		return err
	}
	if written {
		ctx.Printf("Wrote default config to: %s\n", ctx.ConfigPath)
	}
	if ctx.Online() {
		ctx.Println("Remote sheet: configured")
	} else {
		ctx.Println("Remote sheet: none, running offline (see 'weekgrid config set-endpoint')")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	path := ctx.CachePath()
	if path == "" {
		return fmt.Errorf("--force is only supported for the sqlite cache backend")
	}
	if _, err := os.Stat(path); err == nil {
		if err := ctx.Provider.Close(); err != nil {
			return fmt.Errorf("failed to close existing cache: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing cache: %w", err)
		}
		ctx.Printf("Deleted existing cache at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing cache: %w", err)
	}
	return nil
}
