package backup

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/dragx/internal/logger"
)

const (
	// MaxBackups is the number of previous archives kept per archive name
	MaxBackups = 5
	// BackupDirName is created next to the archive
	BackupDirName = ".dragx-backups"

	timestampFormat = "20060102-150405"
)

var ErrNoArchive = errors.New("archive does not exist")

// BackupInfo describes one kept copy of a previous archive
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager keeps copies of an archive before it is overwritten by a new
// export. Backups live in a hidden directory beside the archive and are
// named "<stem>-<timestamp>.zip".
type Manager struct {
	archivePath string
	backupDir   string
	now         func() time.Time
}

func NewManager(archivePath string) *Manager {
	return &Manager{
		archivePath: archivePath,
		backupDir:   filepath.Join(filepath.Dir(archivePath), BackupDirName),
		now:         time.Now,
	}
}

func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

func (m *Manager) prefix() string {
	base := filepath.Base(m.archivePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "-"
}

func (m *Manager) suffix() string {
	if ext := filepath.Ext(m.archivePath); ext != "" {
		return ext
	}
	return ".zip"
}

// CreateBackup copies the current archive into the backup directory and
// prunes the oldest copies beyond MaxBackups. It returns ErrNoArchive when
// there is nothing to keep.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// createBackup copies the archive aside. Rotation is skipped while a
// restore still needs to read one of the kept copies.
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if _, err := os.Stat(m.archivePath); os.IsNotExist(err) {
		return "", ErrNoArchive
	}
	if err := verifyArchive(m.archivePath); err != nil {
		return "", fmt.Errorf("existing archive is not a valid zip: %w", err)
	}
	if err := os.MkdirAll(m.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := m.now().Format(timestampFormat)
	backupPath := filepath.Join(m.backupDir, m.prefix()+timestamp+m.suffix())
	for counter := 1; ; counter++ {
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			break
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		backupPath = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", m.prefix(), timestamp, counter, m.suffix()))
	}

	if err := copyFile(m.archivePath, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up archive: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old archive backups", "error", err)
		}
	}
	logger.Info("Backed up previous archive", "archive", m.archivePath, "backup", backupPath)
	return backupPath, nil
}

// ListBackups returns the kept copies of this archive, newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, m.prefix()) || !strings.HasSuffix(name, m.suffix()) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, m.prefix()), m.suffix())
		// drop the "-N" counter of a same-second backup
		if len(stamp) > len(timestampFormat) {
			stamp = stamp[:len(timestampFormat)]
		}
		timestamp, err := time.ParseInLocation(timestampFormat, stamp, time.Local)
		if err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			// a counter suffix marks the later of two same-second copies
			if len(backups[i].Path) != len(backups[j].Path) {
				return len(backups[i].Path) > len(backups[j].Path)
			}
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup puts a kept copy back in place of the archive. The archive
// being replaced is itself backed up first, without rotation, so restoring
// the oldest copy never deletes it; the next export prunes the set.
func (m *Manager) RestoreBackup(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := verifyArchive(backupPath); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := m.createBackup(true); err != nil && !errors.Is(err, ErrNoArchive) {
		return fmt.Errorf("failed to back up current archive before restore: %w", err)
	}

	tempPath := m.archivePath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, m.archivePath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tempPath, "error", removeErr)
		}
		return fmt.Errorf("failed to restore archive: %w", err)
	}
	return nil
}

func verifyArchive(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	return r.Close()
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
