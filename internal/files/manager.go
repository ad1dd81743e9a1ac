package files

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
)

// Manager owns the temp directory where uploaded and synthesized audio
// lives between request start and response delivery.
type Manager struct {
	tempDir string
	fileTTL time.Duration
	logger  *Logger.Logger
}

func NewManager(tempDir string, logger *Logger.Logger) (*Manager, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir %s: %w", tempDir, err)
	}
	return &Manager{
		tempDir: tempDir,
		fileTTL: 2 * time.Hour,
		logger:  logger,
	}, nil
}

func (m *Manager) TempDir() string {
	return m.tempDir
}

// SaveUpload writes uploaded audio bytes to a uniquely named file and
// returns its path.
func (m *Manager) SaveUpload(data []byte, ext string) (string, error) {
	if ext == "" {
		ext = ".wav"
	}
	path := filepath.Join(m.tempDir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path, nil
}

// Delete removes a file, logging rather than failing when it's already
// gone.
func (m *Manager) Delete(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Errorf("failed to delete temp file %s: %v", path, err)
	}
}

// CleanupOld removes temp files older than the TTL and returns how many
// were deleted.
func (m *Manager) CleanupOld() int {
	entries, err := os.ReadDir(m.tempDir)
	if err != nil {
		m.logger.Errorf("failed to read temp dir: %v", err)
		return 0
	}

	cutoff := time.Now().Add(-m.fileTTL)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(m.tempDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	if removed > 0 {
		m.logger.Infof("cleaned up %d old temp file(s)", removed)
	}
	return removed
}
