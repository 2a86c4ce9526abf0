package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveMedia moves the media directory to an archive with timestamp and
// returns the archive path. The media directory is recreated empty so the
// server can keep writing to it.
func ArchiveMedia(mediaDir string) (string, error) {
	// Check if media directory exists
	if _, err := os.Stat(mediaDir); os.IsNotExist(err) {
		return "", fmt.Errorf("media directory does not exist: %s", mediaDir)
	}

	mediaDir = filepath.Clean(mediaDir)
	base := filepath.Base(mediaDir)

	// Get parent directory and create archive path
	parentDir := filepath.Dir(mediaDir)
	archiveDir := filepath.Join(parentDir, "archive")

	// Create archive directory if it doesn't exist
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Generate timestamp
	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", base, timestamp))

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", base, timestamp))
	}

	// Rename media directory to archive
	if err := os.Rename(mediaDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive media directory: %w", err)
	}

	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return archivePath, fmt.Errorf("failed to recreate media directory: %w", err)
	}

	return archivePath, nil
}
