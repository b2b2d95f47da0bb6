// Package state persists the input position of a run so it can be resumed
package state

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mallocator/free-domains/pkg/config"
	"github.com/mallocator/free-domains/pkg/logger"
)

// Checkpoint records how far a run got through its input
type Checkpoint struct {
	// Input file the position refers to
	Input string `json:"input"`

	// Number of input lines fully processed
	Position int `json:"position"`

	// Free domains found so far in this run
	Free int `json:"free"`

	Updated time.Time `json:"updated"`
}

// Manager reads and writes the checkpoint file
type Manager struct {
	cfg *config.Config
	log *logger.Logger
}

// New creates a new state manager
func New(cfg *config.Config, log *logger.Logger) *Manager {
	return &Manager{
		cfg: cfg,
		log: log,
	}
}

// Load reads the checkpoint. ok is false when there is none for the
// configured input file.
func (m *Manager) Load() (cp Checkpoint, ok bool) {
	data, err := os.ReadFile(m.cfg.State())
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warnf("Read state error for %s: %v", m.cfg.State(), err)
		}
		return Checkpoint{}, false
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		m.log.Warnf("Parse state error for %s: %v", m.cfg.State(), err)
		return Checkpoint{}, false
	}
	if cp.Input != m.cfg.InputFile {
		m.log.Warnf("State %s belongs to %s, not %s; ignoring it", m.cfg.State(), cp.Input, m.cfg.InputFile)
		return Checkpoint{}, false
	}
	return cp, true
}

// Save writes the checkpoint
func (m *Manager) Save(cp Checkpoint) {
	cp.Input = m.cfg.InputFile
	cp.Updated = time.Now().UTC()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		m.log.Errorf("Marshal state error: %v", err)
		return
	}
	if err := os.WriteFile(m.cfg.State(), data, 0644); err != nil {
		m.log.Warnf("Write state error for %s: %v", m.cfg.State(), err)
	}
}

// Clear removes the checkpoint after a completed run. Files that were not
// written by this application are left alone.
func (m *Manager) Clear() {
	path := m.cfg.State()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	if !m.IsAppGeneratedFile(path) {
		m.log.Debugf("Skipping non-app file: %s", path)
		return
	}
	if err := os.Remove(path); err != nil {
		m.log.Warnf("Failed to remove state %s: %v", path, err)
		return
	}
	m.log.Debugf("Removed state %s", path)
}

// IsAppGeneratedFile checks if a file was generated by this application
// by attempting to parse it as a Checkpoint
func (m *Manager) IsAppGeneratedFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return false
	}
	return cp.Input != ""
}
