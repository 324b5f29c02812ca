package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"juridico/api/internal/collection"
	"juridico/api/internal/seed"
)

func setupKV(t *testing.T) (*KVBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	backend, err := NewKVBackend("redis://"+mr.Addr(), seed.Data)
	if err != nil {
		t.Fatalf("NewKVBackend failed: %v", err)
	}
	t.Cleanup(func() { backend.Close() })
	return backend, mr
}

func TestKVLoadFirstRunReturnsSeedData(t *testing.T) {
	backend, _ := setupKV(t)

	data, err := backend.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(data.Clients) != 4 {
		t.Fatalf("expected 4 seed clients, got %d", len(data.Clients))
	}
	wantNames := []string{"Empresa XYZ Ltda.", "Silva & Santos Advogados", "Mariana Costa", "Comércio LTDA"}
	for i, want := range wantNames {
		if data.Clients[i].ID != i+1 {
			t.Errorf("client %d: expected id %d, got %d", i, i+1, data.Clients[i].ID)
		}
		if data.Clients[i].Name != want {
			t.Errorf("client %d: expected name %q, got %q", i, want, data.Clients[i].Name)
		}
	}
}

func TestKVLoadCorruptValueResetsThatCollectionOnly(t *testing.T) {
	backend, mr := setupKV(t)
	ctx := context.Background()

	saved := seed.Data()
	saved.Clients = []collection.Client{{ID: 99, Type: "person", Name: "Cliente Salvo", Status: "ativo"}}
	saved.Lawyers = []collection.Lawyer{{ID: 7, Name: "Dra. Teste", Status: "ativo"}}
	if err := backend.SaveAll(ctx, saved); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	// Corrupt one collection's stored value.
	mr.Set("juridico:clients", "{not json")

	data, err := backend.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	// The corrupt collection silently resets to defaults; data loss is
	// observable here, not an error.
	if len(data.Clients) != 4 || data.Clients[0].Name != "Empresa XYZ Ltda." {
		t.Fatalf("expected default clients after corruption, got %+v", data.Clients)
	}
	// Every other collection keeps its stored value.
	if len(data.Lawyers) != 1 || data.Lawyers[0].Name != "Dra. Teste" {
		t.Fatalf("expected stored lawyers to survive, got %+v", data.Lawyers)
	}
}

func TestKVSaveLoadRoundTripIsIdempotent(t *testing.T) {
	backend, mr := setupKV(t)
	ctx := context.Background()

	if err := backend.SaveAll(ctx, seed.Data()); err != nil {
		t.Fatalf("first SaveAll failed: %v", err)
	}
	first := map[string]string{}
	for _, name := range collection.Names {
		v, err := mr.Get("juridico:" + name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		first[name] = v
	}

	loaded, err := backend.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if err := backend.SaveAll(ctx, loaded); err != nil {
		t.Fatalf("second SaveAll failed: %v", err)
	}

	for _, name := range collection.Names {
		v, err := mr.Get("juridico:" + name)
		if err != nil {
			t.Fatalf("re-read %s: %v", name, err)
		}
		if v != first[name] {
			t.Errorf("%s: persisted content changed across load/save round trip", name)
		}
	}
}

func TestKVSaveWritesOneKeyPerCollection(t *testing.T) {
	backend, mr := setupKV(t)

	if err := backend.SaveAll(context.Background(), seed.Data()); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	for _, name := range collection.Names {
		raw, err := mr.Get("juridico:" + name)
		if err != nil {
			t.Fatalf("expected key for %s: %v", name, err)
		}
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			t.Errorf("%s: stored value is not valid JSON: %v", name, err)
		}
	}
}
