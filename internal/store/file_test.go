package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileEnsureExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todo.json")
	f := NewFile(path)

	created, err := f.EnsureExists()
	if err != nil || !created {
		t.Fatalf("first ensure: created=%t err=%v", created, err)
	}
	created, err = f.EnsureExists()
	if err != nil || created {
		t.Fatalf("second ensure: created=%t err=%v", created, err)
	}
	ts, err := f.Load()
	if err != nil {
		t.Fatalf("load fresh file: %v", err)
	}
	if ts.Len() != 0 {
		t.Fatalf("expected empty store, got %d", ts.Len())
	}
}

func TestFileSaveLoad(t *testing.T) {
	for _, name := range []string{"todo.json", "todo.yaml", "todo.cbor"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			f := NewFile(filepath.Join(dir, name))
			ts := sampleTasks(t)
			if _, err := f.Save(ts); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, err := f.Load()
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if loaded.Len() != ts.Len() {
				t.Fatalf("got %d tasks, want %d", loaded.Len(), ts.Len())
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatalf("read dir: %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("expected only the task file, found %d entries", len(entries))
			}
		})
	}
}

func TestFileLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.json")
	if err := os.WriteFile(path, []byte("[1,2"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFile(path).Load(); err == nil {
		t.Fatalf("expected error for corrupt file")
	}
}
