package storage

import (
	"context"
	"log"
	"strings"
	"sync"

	"juridico/api/internal/collection"
	"juridico/api/internal/notify"
)

// Coordinator is the single entry point the rest of the application uses for
// persistence. It owns the "which backend is active" decision: when a
// directory grant exists and is still valid, loads and saves route to the
// directory backend; otherwise to KV. Adapter errors never escape as panics or
// unhandled errors; they become user-facing notifications.
type Coordinator struct {
	mu       sync.Mutex
	store    *collection.Store
	kv       *KVBackend
	dir      *DirBackend // nil until a directory is granted
	notifier notify.Notifier
}

func NewCoordinator(store *collection.Store, kv *KVBackend, notifier notify.Notifier) *Coordinator {
	return &Coordinator{store: store, kv: kv, notifier: notifier}
}

// active returns the backend loads and saves route to, probing a granted
// directory and dropping the grant when it has become invalid.
func (c *Coordinator) active(ctx context.Context) Backend {
	if c.dir == nil {
		return c.kv
	}
	if err := c.dir.Probe(ctx); err != nil {
		log.Printf("storage: directory grant invalid, falling back to local storage: %v", err)
		c.notifier.Notify(notify.LevelInfo, "Diretório indisponível. Usando armazenamento local.")
		c.dir = nil
		return c.kv
	}
	return c.dir
}

// Initialize loads every collection from the active backend into the store.
// A directory load failure falls back to KV for the session; only a KV load
// failure (Redis unreachable) is returned.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	backend := c.active(ctx)
	data, err := backend.LoadAll(ctx)
	if err != nil && c.dir != nil {
		log.Printf("storage: load from directory failed: %v", err)
		c.notifier.Notify(notify.LevelError, "Erro ao carregar dados do diretório. Usando armazenamento local.")
		c.dir = nil
		data, err = c.kv.LoadAll(ctx)
	}
	if err != nil {
		return err
	}
	c.store.ResetAll(data)
	return nil
}

// SelectDirectory grants a directory and switches to the directory backend.
// An empty path means the user cancelled the chooser: the active backend stays
// KV and no error is returned. On a successful grant the coordinator performs
// exactly one full reload from the directory, discarding the in-memory state
// built from KV. Unsaved KV-only changes are lost on the switch.
func (c *Coordinator) SelectDirectory(ctx context.Context, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path = strings.TrimSpace(path)
	if path == "" {
		c.notifier.Notify(notify.LevelInfo, "Seleção de diretório cancelada. Usando armazenamento local.")
		return
	}

	candidate := NewDirBackend(path, c.kv.defaults)
	if err := candidate.Probe(ctx); err != nil {
		log.Printf("storage: directory grant failed: %v", err)
		c.notifier.Notify(notify.LevelError, "A seleção de diretório falhou. Usando armazenamento local.")
		return
	}

	data, err := candidate.LoadAll(ctx)
	if err != nil {
		log.Printf("storage: load from %s failed: %v", path, err)
		c.notifier.Notify(notify.LevelError, "Erro ao carregar dados do diretório. Usando armazenamento local.")
		return
	}

	c.dir = candidate
	c.store.ResetAll(data)
	c.notifier.Notify(notify.LevelSuccess, "Diretório selecionado com sucesso!")
}

// SaveAll writes the store's current snapshot to the active backend and
// reports the outcome as a notification. The returned error mirrors the
// notification so callers (and tests) can await completion.
func (c *Coordinator) SaveAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	backend := c.active(ctx)
	if err := backend.SaveAll(ctx, c.store.Snapshot()); err != nil {
		log.Printf("storage: save failed: %v", err)
		c.notifier.Notify(notify.LevelError, "Erro ao salvar os dados.")
		return err
	}
	if _, ok := backend.(*DirBackend); ok {
		c.notifier.Notify(notify.LevelSuccess, "Dados salvos no diretório com sucesso!")
	} else {
		c.notifier.Notify(notify.LevelSuccess, "Dados salvos no armazenamento local.")
	}
	return nil
}

// BackendLabel names the active backend for the settings screen.
func (c *Coordinator) BackendLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dir != nil {
		return c.dir.Label()
	}
	return c.kv.Label()
}

// UsingDirectory reports whether a directory grant is currently active.
func (c *Coordinator) UsingDirectory() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dir != nil
}
