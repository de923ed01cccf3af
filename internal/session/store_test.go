package session

import (
	"os"
	"testing"

	"github.com/pfassina/scribe/internal/note"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	st, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if st != Default() {
		t.Fatalf("missing file should load defaults, got %+v", st)
	}

	st.Remember(note.Location{Title: "plan", Folder: "work"})
	st.ShowInfo = false
	if err := store.Save(st); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	loc, ok := got.LastLocation()
	if !ok || loc != (note.Location{Title: "plan", Folder: "work"}) {
		t.Errorf("last location: got %v %v", loc, ok)
	}
	if got.ShowInfo {
		t.Error("ShowInfo should be false")
	}
}

func TestStoreCorruptFile(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := store.Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if st != Default() {
		t.Errorf("corrupt file should fall back to defaults, got %+v", st)
	}
}
