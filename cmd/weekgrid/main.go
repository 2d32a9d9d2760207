package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/weekgrid/internal/cache"
	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/cli/backups"
	"github.com/julianstephens/weekgrid/internal/cli/goals"
	"github.com/julianstephens/weekgrid/internal/cli/slots"
	"github.com/julianstephens/weekgrid/internal/cli/system"
	"github.com/julianstephens/weekgrid/internal/cli/weeks"
	"github.com/julianstephens/weekgrid/internal/config"
	"github.com/julianstephens/weekgrid/internal/constants"
	apperrors "github.com/julianstephens/weekgrid/internal/errors"
	"github.com/julianstephens/weekgrid/internal/logger"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string `help:"Config file path." type:"string" default:"${config_file}"`
	EnvFile   string `help:"Dotenv file loaded before the environment. Defaults to .env next to the config file." type:"string"`
	Endpoint  string `help:"Sheet proxy URL for this run, overriding config and keyring."`
	Offline   bool   `help:"Ignore any configured endpoint and work from the local cache."`
	Ephemeral bool   `help:"Keep the cache in memory for this run only."`
	Debug     bool   `help:"Log debug output to stderr."`

	Init   system.InitCmd   `cmd:"" help:"Initialize the local cache and write a default config."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive week grid." default:"1"`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Proxy  system.ProxyCmd  `cmd:"" help:"Serve a local sheet proxy backed by SQLite."`
	Week   struct {
		Show weeks.ShowCmd `cmd:"" help:"Show a week's slots." default:"withargs"`
		Next weeks.NextCmd `cmd:"" help:"Show the week after the one last shown."`
		Prev weeks.PrevCmd `cmd:"" help:"Show the week before the one last shown."`
		Goto weeks.GotoCmd `cmd:"" help:"Show the week containing a date."`
	} `cmd:"" help:"Show and switch weeks."`
	Weeks    weeks.ListCmd     `cmd:"" help:"List every known week."`
	CopyWeek weeks.CopyCmd     `cmd:"" name:"copy-week" help:"Copy an earlier week's slots into a week."`
	Standard weeks.StandardCmd `cmd:"" help:"Toggle the standard-week marker."`
	Slot     struct {
		Add    slots.AddCmd    `cmd:"" help:"Add a slot."`
		Edit   slots.EditCmd   `cmd:"" help:"Edit a slot's text, category, length or reminder."`
		Delete slots.DeleteCmd `cmd:"" help:"Delete a slot."`
		Move   slots.MoveCmd   `cmd:"" help:"Move a slot to another day or time."`
		Resize slots.ResizeCmd `cmd:"" help:"Change a slot's start or length."`
	} `cmd:"" help:"Manage slots."`
	Goal struct {
		Add    goals.AddCmd    `cmd:"" help:"Add a goal."`
		Done   goals.DoneCmd   `cmd:"" help:"Toggle a goal's completed flag."`
		Rename goals.RenameCmd `cmd:"" help:"Rename a goal."`
		Delete goals.DeleteCmd `cmd:"" help:"Delete a goal."`
		List   goals.ListCmd   `cmd:"" help:"List a week's goals." default:"withargs"`
	} `cmd:"" help:"Manage weekly goals."`
	Note struct {
		Retro   goals.RetroCmd   `cmd:"" help:"Show or set the week's retrospective."`
		General goals.GeneralCmd `cmd:"" help:"Show or set the week's notes."`
	} `cmd:"" help:"Manage weekly notes."`
	Export backups.ExportCmd `cmd:"" help:"Export a week as CSV."`
	Import backups.ImportCmd `cmd:"" help:"Import a week from a CSV export."`
	Backup struct {
		Create  backups.CreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.ListCmd    `cmd:"" help:"List available backups."`
		Restore backups.RestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage cache backups."`
	ConfigCmd struct {
		Show          system.ShowCmd          `cmd:"" help:"Show the effective configuration." default:"1"`
		SetEndpoint   system.SetEndpointCmd   `cmd:"" help:"Store the sheet proxy URL in the OS keyring."`
		ClearEndpoint system.ClearEndpointCmd `cmd:"" help:"Remove the stored sheet proxy URL."`
		SetConnection system.SetConnectionCmd `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
	} `cmd:"" name:"config" help:"Manage configuration and secrets."`
}

// noPreload lists commands that open the cache themselves, or not at all.
var noPreload = []string{"init", "doctor", "proxy", "config"}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly time-block planner with a spreadsheet-backed schedule"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
			"proxy_addr":  constants.DefaultProxyAddr,
		},
	)

	cfg, err := config.Load(config.Options{File: CLI.Config, EnvFile: CLI.EnvFile})
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if CLI.Endpoint != "" {
		cfg.Endpoint = CLI.Endpoint
		if err := cfg.Validate(); err != nil {
			apperrors.Fatal(err)
		}
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.Dir(),
		Quiet:     strings.HasPrefix(command, "tui"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	var provider cache.Provider
	if CLI.Ephemeral {
		provider = cache.NewMemory()
	} else if provider, err = cli.OpenProvider(cfg); err != nil {
		apperrors.Fatal(err)
	}
	defer provider.Close()

	if !skipPreload(command) {
		if err := provider.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	appCtx, err := cli.NewContext(context.Background(), cfg, provider)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Offline {
		appCtx.Remote = nil
	}
	if appCtx.ConfigPath, err = homedir.Expand(CLI.Config); err != nil {
		apperrors.Fatal(err)
	}

	if err := ctx.Run(appCtx); err != nil {
		provider.Close()
		apperrors.Fatal(err)
	}
}

func skipPreload(command string) bool {
	for _, name := range noPreload {
		if command == name || strings.HasPrefix(command, name+" ") {
			return true
		}
	}
	return false
}
