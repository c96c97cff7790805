package exports

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dragx/internal/archive"
	"github.com/julianstephens/dragx/internal/backup"
	"github.com/julianstephens/dragx/internal/cli"
	"github.com/julianstephens/dragx/internal/logger"
)

type ExportCmd struct {
	cli.BoardOptions `embed:""`

	Out   string `help:"Archive to write." type:"path" short:"o" default:"${archive_name}"`
	Force bool   `help:"Overwrite the archive if it already exists, keeping a backup of it." short:"f"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if !c.Force {
		if _, err := os.Stat(c.Out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", c.Out)
		}
	}

	sess, err := ctx.Prepare(c.BoardOptions)
	if err != nil {
		return err
	}

	entries := sess.Board.BuildExportManifest(sess.Prefix)
	if len(entries) == 0 {
		return cli.ErrNothingToExport
	}

	if c.Force {
		if kept, err := backup.NewManager(c.Out).CreateBackup(); err == nil {
			fmt.Fprintf(ctx.Out(), "Previous archive kept as %s\n", kept)
		} else if !errors.Is(err, backup.ErrNoArchive) {
			return fmt.Errorf("failed to back up %s: %w", c.Out, err)
		}
	}

	res, err := archive.WriteFile(ctx.Context(), c.Out, entries, archive.Options{})
	if err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	renamed := make([]string, 0, len(res.Renamed))
	for final := range res.Renamed {
		renamed = append(renamed, final)
	}
	sort.Strings(renamed)
	for _, final := range renamed {
		fmt.Fprintf(ctx.Err(), "warning: %s is taken, stored as %s\n", res.Renamed[final], final)
	}

	fmt.Fprintf(ctx.Out(), "✓ Exported %d photo(s) (%s) to %s\n", res.Entries, humanize.Bytes(uint64(res.Bytes)), c.Out)
	logger.Info("Export command finished", "run", res.RunID, "out", c.Out, "renamed", len(res.Renamed))
	return nil
}
