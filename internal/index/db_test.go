package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pfassina/scribe/internal/note"
)

func TestOpenMemoryEmpty(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	snap, err := db.Listing()
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Empty() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestReplaceListing(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	docs := []note.Location{
		{Title: "b", Folder: "work"},
		{Title: "a"},
		{Title: "a", Folder: "work"},
	}
	if err := db.ReplaceListing(docs, []string{"work", "empty"}, at); err != nil {
		t.Fatal(err)
	}

	snap, err := db.Listing()
	if err != nil {
		t.Fatal(err)
	}
	want := []note.Location{{Title: "a"}, {Title: "a", Folder: "work"}, {Title: "b", Folder: "work"}}
	if len(snap.Documents) != len(want) {
		t.Fatalf("documents: got %v, want %v", snap.Documents, want)
	}
	for i := range want {
		if snap.Documents[i] != want[i] {
			t.Errorf("documents[%d]: got %v, want %v", i, snap.Documents[i], want[i])
		}
	}
	if len(snap.Folders) != 2 || snap.Folders[0] != "empty" || snap.Folders[1] != "work" {
		t.Errorf("folders: got %v", snap.Folders)
	}
	if !snap.TakenAt.Equal(at) {
		t.Errorf("taken at: got %v, want %v", snap.TakenAt, at)
	}

	// A second replace discards everything from the first.
	if err := db.ReplaceListing([]note.Location{{Title: "only"}}, nil, at.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	snap, err = db.Listing()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Documents) != 1 || snap.Documents[0].Title != "only" {
		t.Errorf("documents after replace: got %v", snap.Documents)
	}
	if len(snap.Folders) != 0 {
		t.Errorf("folders after replace: got %v", snap.Folders)
	}
}

func TestReopenKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listing.db")

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceListing([]note.Location{{Title: "x", Folder: "f"}}, []string{"f"}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	snap, err := db.Listing()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Documents) != 1 || snap.Documents[0] != (note.Location{Title: "x", Folder: "f"}) {
		t.Errorf("documents: got %v", snap.Documents)
	}
}
