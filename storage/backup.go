package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const backupTimeFormat = "2006-01-02_15-04-05"

// Backup copies srcDir into a timestamped folder of backupDir every day at hour:00 and
// removes backups older than retention. It returns when ctx is cancelled.
func Backup(ctx context.Context, logger *zap.Logger, srcDir, backupDir string, retention time.Duration, hour int) {
	for {
		now := time.Now()
		next := NextRun(now, hour)
		logger.Info("next image backup scheduled", zap.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		destDir := filepath.Join(backupDir, time.Now().Format(backupTimeFormat))
		if err := CopyDir(srcDir, destDir); err != nil {
			logger.Error("failed to back up images", zap.Error(err))
		} else {
			logger.Info("images backed up", zap.String("dir", destDir))
		}

		removed, err := CleanupOldBackups(backupDir, retention, time.Now())
		if err != nil {
			logger.Error("failed to read backup directory", zap.Error(err))
		}
		for _, dir := range removed {
			logger.Info("deleted old backup", zap.String("dir", dir))
		}
	}
}

// NextRun is the next occurrence of hour:00 strictly after now
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// CopyDir recursively copies a folder
func CopyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcPath, destPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, destPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// CleanupOldBackups removes backup folders modified before now-retention and returns their paths
func CleanupOldBackups(backupDir string, retention time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-retention)
	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(backupDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(folderPath); err == nil {
				removed = append(removed, folderPath)
			}
		}
	}
	return removed, nil
}
