package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// The migration runner applies *.up.sql files in lexical order; the files on
// disk must keep a sortable numeric prefix.
func TestMigrationFilesAreOrdered(t *testing.T) {
	dir := filepath.Join("..", "..", "db", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		t.Fatal("expected at least one migration file")
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("migration files are not lexically ordered: %v", names)
	}
	for _, name := range names {
		prefix := strings.SplitN(name, "_", 2)[0]
		if len(prefix) != 4 {
			t.Errorf("migration %s: expected 4-digit numeric prefix", name)
		}
	}
}
