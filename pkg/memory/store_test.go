package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupStore opens a store under the test's temp dir.
func setupStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "memory.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return store, path
}

// TestStoreRoundTrip tests upserting a record and reading it back through a
// fresh store
func TestStoreRoundTrip(t *testing.T) {
	store, path := setupStore(t)

	rec := Record{
		LastSeen:  "2026-08-27T10:00:00Z",
		Target:    "label",
		Shape:     map[string]int{"rows": 100, "cols": 5},
		BestModel: "RandomForest",
		BestMetrics: MetricSet{
			"accuracy": 0.91,
			"f1_macro": 0.88,
		},
	}
	if err := store.Upsert("fp_42", rec); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	got, ok := reopened.Get("fp_42")
	if !ok {
		t.Fatal("expected record to survive a reopen")
	}
	if got.BestModel != "RandomForest" {
		t.Errorf("expected best model RandomForest, got %s", got.BestModel)
	}
	if got.Shape["rows"] != 100 {
		t.Errorf("expected 100 rows in shape, got %d", got.Shape["rows"])
	}
	if got.BestMetrics["f1_macro"] != 0.88 {
		t.Errorf("expected f1_macro 0.88, got %v", got.BestMetrics["f1_macro"])
	}
}

// TestStoreAbsentKey tests that a never-seen fingerprint is not an error
func TestStoreAbsentKey(t *testing.T) {
	store, _ := setupStore(t)

	if _, ok := store.Get("fp_never_seen"); ok {
		t.Error("expected absent fingerprint to return ok=false")
	}
}

// TestStoreUpsertOverwrites tests that upsert replaces the previous record
func TestStoreUpsertOverwrites(t *testing.T) {
	store, _ := setupStore(t)

	if err := store.Upsert("fp_1", Record{BestModel: "MajorityClass"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := store.Upsert("fp_1", Record{BestModel: "KNN"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	got, _ := store.Get("fp_1")
	if got.BestModel != "KNN" {
		t.Errorf("expected overwrite to win, got %s", got.BestModel)
	}
	if len(store.Records()) != 1 {
		t.Errorf("expected 1 record, got %d", len(store.Records()))
	}
}

// TestStoreMissingFile tests that a nonexistent file opens as an empty store
func TestStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never_written.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if len(store.Records()) != 0 || len(store.Notes()) != 0 {
		t.Error("expected an empty store for a missing file")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("open alone should not create the file")
	}
}

// TestStoreCorruptFile tests that a corrupt file is backed up and the store
// reset with an explanatory note
func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open corrupt store: %v", err)
	}
	if len(store.Records()) != 0 {
		t.Error("expected reset store to have no records")
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	if string(backup) != "{not json" {
		t.Errorf("backup should preserve the corrupt content, got %q", backup)
	}

	notes := store.Notes()
	if len(notes) != 1 || !strings.Contains(notes[0].Msg, "Memory reset") {
		t.Errorf("expected a reset note, got %v", notes)
	}
}

// TestStoreNotes tests appending and reading the note log
func TestStoreNotes(t *testing.T) {
	store, path := setupStore(t)

	if err := store.AddNote("first"); err != nil {
		t.Fatalf("failed to add note: %v", err)
	}
	if err := store.AddNote("second"); err != nil {
		t.Fatalf("failed to add note: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	notes := reopened.Notes()
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Msg != "first" || notes[1].Msg != "second" {
		t.Errorf("note order not preserved: %v", notes)
	}
	if notes[0].TS == "" {
		t.Error("expected notes to carry timestamps")
	}
}

// TestStoreRecordsCopy tests that Records returns an independent map
func TestStoreRecordsCopy(t *testing.T) {
	store, _ := setupStore(t)
	if err := store.Upsert("fp_1", Record{BestModel: "KNN"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	records := store.Records()
	delete(records, "fp_1")

	if _, ok := store.Get("fp_1"); !ok {
		t.Error("mutating the Records copy should not affect the store")
	}
}
