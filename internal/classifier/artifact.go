package classifier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion identifies the serialized artifact layout. Loads with a
// different version are rejected rather than risking silent corruption.
const SchemaVersion = 1

// Artifact is the serialized state of the whole engine: category set,
// per-category vectorizer and classifier state, and thresholds.
type Artifact struct {
	SchemaVersion int                      `json:"schema_version"`
	ArtifactID    string                   `json:"artifact_id"`
	SavedAt       time.Time                `json:"saved_at"`
	Categories    []string                 `json:"categories"`
	Thresholds    map[string]float64       `json:"thresholds"`
	Models        map[string]ArtifactModel `json:"models"`
}

// ArtifactModel carries one category's vectorizer vocabulary and linear
// model weights.
type ArtifactModel struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Weights    []float64      `json:"weights"`
	Intercept  float64        `json:"intercept"`
	Trained    bool           `json:"trained"`
}

// ArtifactInfo describes the stored artifact without loading it.
type ArtifactInfo struct {
	Exists       bool
	Location     string
	LastModified time.Time
}

// ArtifactStore is a byte-addressable store for the serialized engine with
// atomic replace-on-write semantics.
type ArtifactStore interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
	Info(ctx context.Context) (ArtifactInfo, error)
}

// FileStore keeps the artifact in a single local file. Writes go to a
// temp file in the same directory followed by a rename, so readers observe
// either the old or the new artifact, never a partial one.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

func (s *FileStore) Info(ctx context.Context) (ArtifactInfo, error) {
	stat, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return ArtifactInfo{Exists: false, Location: s.path}, nil
	}
	if err != nil {
		return ArtifactInfo{}, fmt.Errorf("stat artifact: %w", err)
	}
	return ArtifactInfo{
		Exists:       true,
		Location:     s.path,
		LastModified: stat.ModTime(),
	}, nil
}
