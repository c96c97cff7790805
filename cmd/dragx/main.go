package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/dragx/internal/cli"
	"github.com/julianstephens/dragx/internal/cli/backups"
	"github.com/julianstephens/dragx/internal/cli/exports"
	"github.com/julianstephens/dragx/internal/cli/system"
	"github.com/julianstephens/dragx/internal/constants"
	"github.com/julianstephens/dragx/internal/errors"
	"github.com/julianstephens/dragx/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Debug   bool   `help:"Log debug output to stderr as well as the log file." env:"DRAGX_DEBUG"`
	LogDir  string `help:"Directory for the rotating log file." type:"path" default:"${log_dir}" env:"DRAGX_LOG_DIR"`
	Slots   int    `help:"Number of slots on the board." default:"${slots}" env:"DRAGX_SLOTS"`

	Tui    system.TuiCmd     `cmd:"" help:"Open the slot board." default:"withargs"`
	Export exports.ExportCmd `cmd:"" help:"Fill a board from disk and write the ZIP archive."`
	Plan   exports.PlanCmd   `cmd:"" help:"Show the export names a board would get, without writing."`

	Backup struct {
		List    backups.BackupListCmd    `cmd:"" help:"List kept copies of previous archives."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Put a kept copy back in place of the archive."`
	} `cmd:"" help:"Manage previous archives."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Number photos by slot and export them as a ZIP archive"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":      constants.Version,
			"log_dir":      constants.DefaultLogDir,
			"slots":        strconv.Itoa(constants.TotalSlots),
			"archive_name": constants.DefaultArchiveName,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, Dir: CLI.LogDir}); err != nil {
		errors.Fatal(err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Ctx:   runCtx,
		Slots: CLI.Slots,
	}

	logger.Debug("Running command", "command", ctx.Command(), "slots", CLI.Slots)
	if err := ctx.Run(appCtx); err != nil {
		stop()
		errors.Fatal(err)
	}
}
