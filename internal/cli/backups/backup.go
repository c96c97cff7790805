package backups

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dragx/internal/backup"
	"github.com/julianstephens/dragx/internal/cli"
)

type BackupListCmd struct {
	Archive string `help:"Archive whose backups to list." type:"path" default:"${archive_name}"`
}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := backup.NewManager(c.Archive)
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	out := ctx.Out()
	if len(backups) == 0 {
		fmt.Fprintln(out, "No backups found.")
		fmt.Fprintf(out, "Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	fmt.Fprintf(out, "Previous archives (%d total, keeping most recent %d):\n\n", len(backups), backup.MaxBackups)
	for _, b := range backups {
		timestamp := b.Timestamp.Format("2006-01-02 15:04:05")
		fmt.Fprintf(out, "  %s  %s  (%s)\n", timestamp, filepath.Base(b.Path), humanize.Bytes(uint64(b.Size)))
	}
	fmt.Fprintf(out, "\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Archive    string `help:"Archive to replace." type:"path" default:"${archive_name}"`
	Yes        bool   `help:"Do not ask for confirmation." short:"y"`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr := backup.NewManager(c.Archive)

	backupPath, err := c.resolve(mgr)
	if err != nil {
		return err
	}

	out := ctx.Out()
	if !c.Yes {
		fmt.Fprintf(out, "This will replace %s with %s.\n", c.Archive, filepath.Base(backupPath))
		fmt.Fprintln(out, "The current archive is backed up first.")
		fmt.Fprint(out, "Continue? [y/N]: ")

		reader := bufio.NewReader(ctx.In())
		response, err := reader.ReadString('\n')
		if err != nil && response == "" {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Restore cancelled.")
			return nil
		}
	}

	if err := mgr.RestoreBackup(backupPath); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	fmt.Fprintf(out, "✓ Restored %s\n", c.Archive)
	return nil
}

// resolve accepts an absolute path, a path relative to the working
// directory, or a bare file name inside the backup directory.
func (c *BackupRestoreCmd) resolve(mgr *backup.Manager) (string, error) {
	if filepath.IsAbs(c.BackupFile) {
		if _, err := os.Stat(c.BackupFile); os.IsNotExist(err) {
			return "", fmt.Errorf("backup file not found: %s", c.BackupFile)
		}
		return c.BackupFile, nil
	}
	if _, err := os.Stat(c.BackupFile); err == nil {
		abs, err := filepath.Abs(c.BackupFile)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return abs, nil
	}
	candidate := filepath.Join(mgr.GetBackupDir(), c.BackupFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", mgr.GetBackupDir())
}
