package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"juridico/api/internal/collection"
	"juridico/api/internal/seed"
)

func TestDirLoadMissingFilesReturnsDefaults(t *testing.T) {
	backend := NewDirBackend(t.TempDir(), seed.Data)

	data, err := backend.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(data.Clients) != 4 {
		t.Fatalf("expected 4 seed clients on first run, got %d", len(data.Clients))
	}
	if len(data.Documents) != 18 {
		t.Fatalf("expected 18 seed documents, got %d", len(data.Documents))
	}
}

func TestDirLoadCorruptFileFailsTheLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "clients.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	backend := NewDirBackend(dir, seed.Data)

	_, err := backend.LoadAll(context.Background())
	if err == nil {
		t.Fatal("expected decode error for corrupt clients.json")
	}
	if !strings.Contains(err.Error(), "clients.json") {
		t.Fatalf("expected error to name the file, got %v", err)
	}
}

func TestDirSaveWritesPrettyPrintedFiles(t *testing.T) {
	dir := t.TempDir()
	backend := NewDirBackend(dir, seed.Data)

	if err := backend.SaveAll(context.Background(), seed.Data()); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	for _, name := range collection.Names {
		raw, err := os.ReadFile(filepath.Join(dir, name+".json"))
		if err != nil {
			t.Fatalf("expected %s.json: %v", name, err)
		}
		if name != collection.ClientAccesses && !strings.Contains(string(raw), "\n  ") {
			t.Errorf("%s.json: expected 2-space indented JSON", name)
		}
	}
}

func TestDirSaveReplacesFilesWithoutTempResidue(t *testing.T) {
	dir := t.TempDir()
	backend := NewDirBackend(dir, seed.Data)

	// A stale partial write from an earlier crash must be fully replaced.
	if err := os.WriteFile(filepath.Join(dir, "clients.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write stale file: %v", err)
	}

	if err := backend.SaveAll(context.Background(), seed.Data()); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("temp file %s left behind after save", entry.Name())
		}
	}

	if _, err := backend.LoadAll(context.Background()); err != nil {
		t.Fatalf("expected saved files to decode after replacing stale content: %v", err)
	}
}

func TestDirSaveLoadRoundTripIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	backend := NewDirBackend(dir, seed.Data)
	ctx := context.Background()

	if err := backend.SaveAll(ctx, seed.Data()); err != nil {
		t.Fatalf("first SaveAll failed: %v", err)
	}
	first := map[string][]byte{}
	for _, name := range collection.Names {
		raw, err := os.ReadFile(filepath.Join(dir, name+".json"))
		if err != nil {
			t.Fatalf("read %s.json: %v", name, err)
		}
		first[name] = raw
	}

	loaded, err := backend.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if err := backend.SaveAll(ctx, loaded); err != nil {
		t.Fatalf("second SaveAll failed: %v", err)
	}

	for _, name := range collection.Names {
		raw, err := os.ReadFile(filepath.Join(dir, name+".json"))
		if err != nil {
			t.Fatalf("re-read %s.json: %v", name, err)
		}
		if string(raw) != string(first[name]) {
			t.Errorf("%s.json: persisted content changed across load/save round trip", name)
		}
	}
}

func TestDirProbeDetectsRemovedDirectory(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "dados")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	backend := NewDirBackend(nested, seed.Data)

	if err := backend.Probe(context.Background()); err != nil {
		t.Fatalf("expected probe to pass: %v", err)
	}

	if err := os.RemoveAll(nested); err != nil {
		t.Fatalf("remove dir: %v", err)
	}
	if err := backend.Probe(context.Background()); err == nil {
		t.Fatal("expected probe to fail after directory removal")
	}
}
