package semantic

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chocoworld/chocochat/engine/domain"
)

// DefaultSnapshotDir is where the indexer writes and the server looks for
// the snapshot unless INDEX_DIR says otherwise.
const DefaultSnapshotDir = "faiss_products_db"

const (
	snapshotFile = "index.gob"
	manifestFile = "manifest.json"
)

// SnapshotError describes a failed snapshot load or save. Callers treat any
// load failure the same way: serve "not loaded" rather than crash.
type SnapshotError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapshot %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("snapshot %s: %s", e.Path, e.Reason)
}

func (e *SnapshotError) Unwrap() error { return e.Err }

// manifest is the integrity sidecar written next to the blob. A load only
// trusts a blob whose checksum it can verify.
type manifest struct {
	Dimension int       `json:"dimension"`
	Count     int       `json:"count"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

type snapshotPayload struct {
	Dimension int
	Units     []domain.Unit
	Vectors   [][]float32
}

// SaveSnapshot persists the index to dir: a gob blob plus a manifest with
// its SHA-256 checksum.
func (f *FlatIndex) SaveSnapshot(dir string) error {
	f.mu.RLock()
	payload := snapshotPayload{Dimension: f.dimension, Units: f.units, Vectors: f.vectors}
	f.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
		return &SnapshotError{Path: dir, Reason: "encode", Err: err}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &SnapshotError{Path: dir, Reason: "create directory", Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, snapshotFile), buf.Bytes(), 0o644); err != nil {
		return &SnapshotError{Path: dir, Reason: "write blob", Err: err}
	}

	sum := sha256.Sum256(buf.Bytes())
	m := manifest{
		Dimension: payload.Dimension,
		Count:     len(payload.Units),
		Checksum:  hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &SnapshotError{Path: dir, Reason: "encode manifest", Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644); err != nil {
		return &SnapshotError{Path: dir, Reason: "write manifest", Err: err}
	}
	return nil
}

// LoadSnapshot reconstructs an index from dir without re-embedding anything.
// With verify set, the blob's SHA-256 must match the manifest; skipping
// verification is an explicit caller decision, not the default.
func LoadSnapshot(dir string, verify bool) (*FlatIndex, error) {
	blob, err := os.ReadFile(filepath.Join(dir, snapshotFile))
	if err != nil {
		return nil, &SnapshotError{Path: dir, Reason: "read blob", Err: err}
	}

	if verify {
		data, err := os.ReadFile(filepath.Join(dir, manifestFile))
		if err != nil {
			return nil, &SnapshotError{Path: dir, Reason: "read manifest", Err: err}
		}
		var m manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, &SnapshotError{Path: dir, Reason: "decode manifest", Err: err}
		}
		sum := sha256.Sum256(blob)
		if hex.EncodeToString(sum[:]) != m.Checksum {
			return nil, &SnapshotError{Path: dir, Reason: "checksum mismatch"}
		}
	}

	var payload snapshotPayload
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&payload); err != nil {
		return nil, &SnapshotError{Path: dir, Reason: "decode blob", Err: err}
	}
	if len(payload.Units) != len(payload.Vectors) {
		return nil, &SnapshotError{Path: dir, Reason: fmt.Sprintf("%d units but %d vectors", len(payload.Units), len(payload.Vectors))}
	}

	return &FlatIndex{
		dimension: payload.Dimension,
		units:     payload.Units,
		vectors:   payload.Vectors,
	}, nil
}
