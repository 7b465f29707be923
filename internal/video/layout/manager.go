package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/consensuslabs/vodstream/internal/errors"
	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/google/uuid"
)

const (
	dirPrefix      = "stream_"
	playlistPrefix = "output_"
	playlistExt    = ".m3u8"
	allocAttempts  = 2
)

// Config represents the configuration for the layout manager
type Config struct {
	StreamRoot  string      // Root served to players; one subdirectory per job
	StagingDir  string      // Where uploads wait for their job
	Permissions os.FileMode // Permissions for created directories
}

// Allocation is the set of names reserved for one transcode job
type Allocation struct {
	JobID      string
	OutputDir  string
	OutputFile string
}

// PlaylistPath returns the absolute path of the job's playlist
func (a *Allocation) PlaylistPath() string {
	return filepath.Join(a.OutputDir, a.OutputFile)
}

// Entry describes a file or directory found under a managed root
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Manager handles the on-disk layout of staged uploads and HLS output
type Manager struct {
	streamRoot  string
	stagingDir  string
	activeDirs  map[string]bool
	logger      logger.Logger
	mu          sync.RWMutex
	permissions os.FileMode
	newID       func() (string, error)
}

// NewManager creates the stream root and staging directory if needed
func NewManager(config *Config, logger logger.Logger) (*Manager, error) {
	perm := config.Permissions
	if perm == 0 {
		perm = 0755
	}

	streamRoot, err := filepath.Abs(config.StreamRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stream root: %w", err)
	}
	stagingDir, err := filepath.Abs(config.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staging directory: %w", err)
	}

	for _, dir := range []string{streamRoot, stagingDir} {
		if err := os.MkdirAll(dir, perm); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &Manager{
		streamRoot:  streamRoot,
		stagingDir:  stagingDir,
		activeDirs:  make(map[string]bool),
		logger:      logger,
		permissions: perm,
		newID:       newJobID,
	}, nil
}

// newJobID returns a time-ordered UUID so directory listings sort by creation.
func newJobID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// StreamRoot returns the absolute stream root
func (m *Manager) StreamRoot() string {
	return m.streamRoot
}

// Allocate creates a fresh stream_<id> directory. The directory is created
// with Mkdir so an existing name is never reused; one retry with a new id is
// made before giving up.
func (m *Manager) Allocate() (*Allocation, error) {
	var lastErr error
	for attempt := 1; attempt <= allocAttempts; attempt++ {
		id, err := m.newID()
		if err != nil {
			lastErr = err
			continue
		}

		dir := filepath.Join(m.streamRoot, dirPrefix+id)
		if err := os.Mkdir(dir, m.permissions); err != nil {
			lastErr = err
			m.logger.LogWarn("Failed to create output directory", map[string]interface{}{
				"path":    dir,
				"attempt": attempt,
				"error":   err.Error(),
			})
			continue
		}

		m.mu.Lock()
		m.activeDirs[dir] = true
		m.mu.Unlock()

		m.logger.LogDebug("Allocated output directory", map[string]interface{}{
			logger.FieldJobID: id,
			"path":            dir,
		})
		return &Allocation{
			JobID:      id,
			OutputDir:  dir,
			OutputFile: playlistPrefix + id + playlistExt,
		}, nil
	}

	return nil, apperrors.NewStorageError("failed to allocate output directory", lastErr)
}

// Release stops tracking an allocation
func (m *Manager) Release(alloc *Allocation) {
	if alloc == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.activeDirs, alloc.OutputDir)
}

// IsActive checks if a directory belongs to a job that has not been released
func (m *Manager) IsActive(dir string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeDirs[dir]
}

// StagePath returns a unique staging path keeping the upload's extension
func (m *Manager) StagePath(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return filepath.Join(m.stagingDir, uuid.NewString()+ext)
}

// Relative returns path relative to the stream root using forward slashes
func (m *Manager) Relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", apperrors.NewStorageError("failed to resolve path", err)
	}
	rel, err := filepath.Rel(m.streamRoot, abs)
	if err != nil {
		return "", apperrors.NewStorageError("path is not under the stream root", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.NewStorageError(fmt.Sprintf("path %s is outside the stream root", path), nil)
	}
	return filepath.ToSlash(rel), nil
}

// ListOutputs returns the job directories under the stream root
func (m *Manager) ListOutputs() ([]Entry, error) {
	return m.list(m.streamRoot, func(e os.DirEntry) bool {
		return e.IsDir() && strings.HasPrefix(e.Name(), dirPrefix)
	})
}

// ListStaged returns the files waiting in the staging directory
func (m *Manager) ListStaged() ([]Entry, error) {
	return m.list(m.stagingDir, func(e os.DirEntry) bool {
		return e.Type().IsRegular()
	})
}

func (m *Manager) list(dir string, keep func(os.DirEntry) bool) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read "+dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, e := range dirEntries {
		if !keep(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}
