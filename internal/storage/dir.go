package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"juridico/api/internal/collection"
)

// DirBackend stores one pretty-printed JSON file per collection inside a
// directory the user explicitly granted. The grant is a capability held for
// the session; it can become invalid at any time (directory removed,
// permission revoked), which Probe detects.
type DirBackend struct {
	dir      string
	defaults func() collection.Data
}

func NewDirBackend(dir string, defaults func() collection.Data) *DirBackend {
	return &DirBackend{dir: dir, defaults: defaults}
}

func (b *DirBackend) Label() string {
	return filepath.Base(b.dir)
}

func (b *DirBackend) Dir() string {
	return b.dir
}

func (b *DirBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

// Probe verifies the granted directory still exists and is writable. Called
// before every routed operation so a revoked grant is detected on next access
// instead of crashing mid-save.
func (b *DirBackend) Probe(ctx context.Context) error {
	info, err := os.Stat(b.dir)
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", b.dir)
	}
	probe := filepath.Join(b.dir, ".juridico-probe")
	if err := os.WriteFile(probe, []byte{}, 0o644); err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	_ = os.Remove(probe)
	return nil
}

// LoadAll reads every collection file. A missing file is the expected
// first-run condition and substitutes the default; a decode failure is a real
// error and fails the load, so the coordinator can fall back to KV for the
// session.
func (b *DirBackend) LoadAll(ctx context.Context) (collection.Data, error) {
	var data collection.Data
	defaults := b.defaults()
	for _, s := range slots(&data, defaults) {
		raw, err := os.ReadFile(b.path(s.name))
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("storage: %s.json not found in %s, using defaults", s.name, b.dir)
			s.fallback()
			continue
		}
		if err != nil {
			return collection.Data{}, fmt.Errorf("read %s.json: %w", s.name, err)
		}
		if err := json.Unmarshal(raw, s.dst); err != nil {
			return collection.Data{}, fmt.Errorf("decode %s.json: %w", s.name, err)
		}
	}
	return data, nil
}

// SaveAll overwrites each collection file with 2-space-indented JSON. Each
// file is written to a temp sibling and renamed into place, so a crash never
// leaves a half-written collection. The first failed write aborts the
// remaining ones; files already renamed in the same batch stay as written.
func (b *DirBackend) SaveAll(ctx context.Context, data collection.Data) error {
	for _, v := range values(data) {
		encoded, err := json.MarshalIndent(v.value, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", v.name, err)
		}
		if err := b.writeFile(v.name, encoded); err != nil {
			return err
		}
	}
	return nil
}

func (b *DirBackend) writeFile(name string, encoded []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s.json: %w", name, err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s.json: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s.json: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s.json: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), b.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s.json: %w", name, err)
	}
	return nil
}
