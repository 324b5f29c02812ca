package collection

import (
	"context"
	"fmt"
	"sync"
)

// Saver persists the full data set. The store calls it after every mutation so
// the active backend stays in sync with memory.
type Saver interface {
	SaveAll(ctx context.Context) error
}

// Store is the single source of truth for the running session. All mutations
// funnel through Update/Replace; reads get deep-copied snapshots.
type Store struct {
	mu    sync.RWMutex
	data  Data
	saver Saver
}

func NewStore(initial Data) *Store {
	return &Store{data: initial.Clone()}
}

// SetSaver wires the persistence coordinator in after construction (the
// coordinator needs the store to exist first).
func (s *Store) SetSaver(saver Saver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saver = saver
}

// Snapshot returns a deep copy of the current data set.
func (s *Store) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// ResetAll swaps the entire data set without persisting. Used by the
// coordinator when (re)loading from a backend; calling SaveAll here would
// echo freshly loaded data straight back to storage.
func (s *Store) ResetAll(data Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data.Clone()
}

// Update applies a mutation under the write lock and then persists the whole
// data set. The in-memory change sticks even when the save fails: memory and
// durable state are allowed to diverge, the caller surfaces the error as a
// notification.
func (s *Store) Update(ctx context.Context, mutate func(*Data)) error {
	s.mu.Lock()
	mutate(&s.data)
	saver := s.saver
	s.mu.Unlock()

	if saver == nil {
		return nil
	}
	if err := saver.SaveAll(ctx); err != nil {
		return fmt.Errorf("persist collections: %w", err)
	}
	return nil
}

// Replace swaps one named collection wholesale, the contract every CRUD screen
// of the source used. Unknown names are a programming error.
func (s *Store) Replace(ctx context.Context, name string, value any) error {
	var apply func(*Data)
	switch name {
	case Clients:
		v, ok := value.([]Client)
		if !ok {
			return fmt.Errorf("replace %s: unexpected type %T", name, value)
		}
		apply = func(d *Data) { d.Clients = v }
	case Processes:
		v, ok := value.([]Process)
		if !ok {
			return fmt.Errorf("replace %s: unexpected type %T", name, value)
		}
		apply = func(d *Data) { d.Processes = v }
	case Lawyers:
		v, ok := value.([]Lawyer)
		if !ok {
			return fmt.Errorf("replace %s: unexpected type %T", name, value)
		}
		apply = func(d *Data) { d.Lawyers = v }
	case UserProfile:
		v, ok := value.(Profile)
		if !ok {
			return fmt.Errorf("replace %s: unexpected type %T", name, value)
		}
		apply = func(d *Data) { d.UserProfile = v }
	case Financials:
		v, ok := value.([]FinancialItem)
		if !ok {
			return fmt.Errorf("replace %s: unexpected type %T", name, value)
		}
		apply = func(d *Data) { d.Financials = v }
	case Documents:
		v, ok := value.([]DocumentItem)
		if !ok {
			return fmt.Errorf("replace %s: unexpected type %T", name, value)
		}
		apply = func(d *Data) { d.Documents = v }
	case ClientAccesses:
		v, ok := value.([]ClientAccess)
		if !ok {
			return fmt.Errorf("replace %s: unexpected type %T", name, value)
		}
		apply = func(d *Data) { d.ClientAccesses = v }
	case Events:
		v, ok := value.([]Event)
		if !ok {
			return fmt.Errorf("replace %s: unexpected type %T", name, value)
		}
		apply = func(d *Data) { d.Events = v }
	default:
		return fmt.Errorf("replace: unknown collection %q", name)
	}
	return s.Update(ctx, apply)
}
