package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWritesConsoleAndFileSinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collector.log")

	logger, err := New("collector", path)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("cycle complete", "services", 3)
	logger.Critical("datastore unreachable", "attempts", 5)
	if err := logger.Sync(); err != nil {
		t.Logf("sync: %v", err) // stdout sync can legitimately fail under test runners
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to contain entries")
	}
}

func TestRotatingWriterRotatesAtSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotate.log")

	w, err := newRotatingWriter(path)
	if err != nil {
		t.Fatalf("newRotatingWriter: %v", err)
	}

	chunk := make([]byte, 1024*1024)
	for i := range chunk {
		chunk[i] = 'x'
	}
	for i := 0; i < maxFileBytes/len(chunk)+2; i++ {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected a .1 backup to exist after rotation: %v", err)
	}
}
