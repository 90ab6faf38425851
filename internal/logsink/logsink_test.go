package logsink

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteAppendsToDayFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := New(dir, 10)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	sink.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	if _, err := sink.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := sink.Write([]byte("second\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "20260315.log"))
	if err != nil {
		t.Fatalf("read day file: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Fatalf("day file content: %q", data)
	}
}

func TestPruneKeepsNewestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"20260101.log", "20260102.log", "20260103.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	sink, err := New(dir, 3)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	sink.now = func() time.Time { return time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC) }

	if _, err := sink.Write([]byte("new day\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "20260101.log")); !os.IsNotExist(err) {
		t.Fatalf("oldest file should be pruned, stat err=%v", err)
	}
	for _, name := range []string{"20260102.log", "20260103.log", "20260104.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s should be retained: %v", name, err)
		}
	}
}
