package ml

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is bumped whenever the persisted artifact layout changes.
const SchemaVersion = 1

// Artifact is the persisted, versioned bundle of a fitted pipeline and its
// in-sample fit score. Immutable once trained.
type Artifact struct {
	ID            uuid.UUID
	SchemaVersion int
	TrainedAt     time.Time
	FitScore      float64
	Pipeline      *Pipeline
}

// ArtifactStore reads and writes the single canonical artifact slot.
type ArtifactStore struct {
	path string
}

// NewArtifactStore creates a store for the given artifact path.
func NewArtifactStore(path string) *ArtifactStore {
	return &ArtifactStore{path: path}
}

// Path returns the canonical artifact location.
func (s *ArtifactStore) Path() string {
	return s.path
}

// Save persists the artifact, overwriting any prior version. The write goes
// through a temp file and rename so a concurrent loader never sees a partial
// artifact.
func (s *ArtifactStore) Save(a *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".model-*.gob")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(a); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to publish artifact: %w", err)
	}
	return nil
}

// Load reads the artifact from the canonical slot. A missing file returns
// ErrArtifactMissing; a decode failure or schema mismatch returns
// ErrArtifactCorrupt.
func (s *ArtifactStore) Load() (*Artifact, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, s.path)
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	a := &Artifact{}
	if err := gob.NewDecoder(f).Decode(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if a.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", ErrArtifactCorrupt, a.SchemaVersion, SchemaVersion)
	}
	if a.Pipeline == nil || a.Pipeline.Pre == nil || a.Pipeline.Model == nil {
		return nil, fmt.Errorf("%w: incomplete pipeline", ErrArtifactCorrupt)
	}
	return a, nil
}
