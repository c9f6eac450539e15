package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestSaveAndLoad(t *testing.T) {
	s := tempStore(t)
	content := []byte(`{"notes":[]}`)
	if err := s.Save("smartNotesAppData", content); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("smartNotesAppData")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "smartNotesAppData.json")); err != nil {
		t.Errorf("backing file missing: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Load("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_ = s.Save("bye", []byte("x"))
	if err := s.Delete("bye"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load("bye"); !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrNotFound after delete")
	}
	if err := s.Delete("bye"); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	s := tempStore(t)
	for _, k := range []string{"../../etc/passwd", "../outside", "/etc/shadow", "a/b", ""} {
		if _, err := s.Load(k); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("expected invalid-key error for load %q, got %v", k, err)
		}
		if err := s.Save(k, []byte("x")); err == nil {
			t.Errorf("expected error for save %q", k)
		}
	}
}

func TestAtomicSaveNoLeftovers(t *testing.T) {
	s := tempStore(t)
	_ = s.Save("atomic", []byte("original"))
	if err := s.Save("atomic", []byte("updated")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := s.Load("atomic")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".inkweaver-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/inkweaver-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "inkweaver-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestMem_SaveErr(t *testing.T) {
	m := NewMem()
	m.SaveErr = errors.New("quota exceeded")
	if err := m.Save("k", []byte("v")); err == nil {
		t.Fatal("expected injected error")
	}
	if _, err := m.Load("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("failed save must not store data, got %v", err)
	}
}

func TestNoopSyncer(t *testing.T) {
	if err := (NoopSyncer{}).Sync(context.Background(), "k", []byte("v")); err != nil {
		t.Errorf("noop sync should succeed, got %v", err)
	}
}
