package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	book, err := ForSession(dir, "audit_0a1b2c3d")
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	if got, want := book.Path(), filepath.Join(dir, "audit_0a1b2c3d.log"); got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Warn("ignored")
	book.Error("ignored")
	if book.Path() != "" {
		t.Fatalf("nil logbook path = %q, want empty", book.Path())
	}
	if lines, total := book.Tail(10); lines != nil || total != 0 {
		t.Fatalf("nil logbook tail = %v, %d", lines, total)
	}
}
