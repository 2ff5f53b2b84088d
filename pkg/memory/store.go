package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// MetricSet holds the metric values recorded for a model.
type MetricSet map[string]float64

// Record is the best known outcome for one dataset fingerprint.
type Record struct {
	// LastSeen is when the record was last written (UTC, RFC 3339).
	LastSeen string `json:"last_seen"`

	// Target is the resolved target column of the recorded run.
	Target string `json:"target"`

	// Shape is the dataset shape as {rows, cols}.
	Shape map[string]int `json:"shape"`

	// BestModel names the top-ranked candidate of the recorded run.
	BestModel string `json:"best_model"`

	// BestMetrics is the top candidate's metric set.
	BestMetrics MetricSet `json:"best_metrics"`
}

// Note is one entry in the append-only note log.
type Note struct {
	TS  string `json:"ts"`
	Msg string `json:"msg"`
}

// document is the on-disk shape of the store file.
type document struct {
	Datasets map[string]Record `json:"datasets"`
	Notes    []Note            `json:"notes"`
}

// Store is a fingerprint-keyed JSON-file store of past run outcomes.
// It is not safe for use by concurrent processes; see the package doc.
type Store struct {
	path string
	doc  document
}

// nowISO returns the current UTC time without sub-second precision,
// matching the timestamps written into run artifacts.
func nowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// Open loads the store at path, creating an empty store when the file does
// not exist. An unreadable or corrupt file is backed up and the store is
// reset with a note documenting the backup; Open itself only fails when the
// backup cannot be written.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		doc: document{
			Datasets: make(map[string]Record),
			Notes:    []Note{},
		},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err == nil {
		var doc document
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil {
			if doc.Datasets == nil {
				doc.Datasets = make(map[string]Record)
			}
			if doc.Notes == nil {
				doc.Notes = []Note{}
			}
			s.doc = doc
			return s, nil
		}
	}

	// Unreadable or corrupt: keep the evidence, start fresh.
	backup := path + ".bak"
	if copyErr := copyFile(path, backup); copyErr != nil {
		return nil, fmt.Errorf("backing up corrupt memory file: %w", copyErr)
	}
	s.doc.Notes = append(s.doc.Notes, Note{
		TS:  nowISO(),
		Msg: fmt.Sprintf("Memory reset; backup at %s", backup),
	})
	return s, nil
}

// Path returns the file path backing the store.
func (s *Store) Path() string { return s.path }

// Get returns the record for a fingerprint. A never-seen fingerprint is not
// an error; the second return value is false.
func (s *Store) Get(fingerprint string) (Record, bool) {
	rec, ok := s.doc.Datasets[fingerprint]
	return rec, ok
}

// Upsert writes the record for a fingerprint, overwriting any previous one,
// and persists immediately.
func (s *Store) Upsert(fingerprint string, rec Record) error {
	s.doc.Datasets[fingerprint] = rec
	return s.Save()
}

// AddNote appends a timestamped note to the note log and persists
// immediately. The log is unbounded and never pruned.
func (s *Store) AddNote(msg string) error {
	s.doc.Notes = append(s.doc.Notes, Note{TS: nowISO(), Msg: msg})
	return s.Save()
}

// Notes returns a copy of the note log.
func (s *Store) Notes() []Note {
	return append([]Note(nil), s.doc.Notes...)
}

// Records returns a copy of the fingerprint-to-record map.
func (s *Store) Records() map[string]Record {
	out := make(map[string]Record, len(s.doc.Datasets))
	for k, v := range s.doc.Datasets {
		out[k] = v
	}
	return out
}

// Save rewrites the whole store file.
func (s *Store) Save() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory file: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("write memory file %s: %w", s.path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
