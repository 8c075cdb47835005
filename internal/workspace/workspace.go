package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/span/internal/logfields"
)

// ErrNotCreated is returned when the workspace is used before Create.
var ErrNotCreated = errors.New("workspace not created")

// Manager handles a single ephemeral workspace directory.
type Manager struct {
	baseDir string
	dir     string
}

// NewManager creates a workspace manager rooted at baseDir (the system
// temporary directory when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates the workspace directory.
func (m *Manager) Create() error {
	dir := filepath.Join(m.baseDir, "span-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// GetPath returns the path to the workspace directory.
func (m *Manager) GetPath() string {
	return m.dir
}

// File returns the path of name inside the workspace. The file is not created.
func (m *Manager) File(name string) (string, error) {
	if m.dir == "" {
		return "", ErrNotCreated
	}
	return filepath.Join(m.dir, name), nil
}

// Cleanup removes the workspace directory and everything in it.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
