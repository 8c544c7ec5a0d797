package store

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Note is one knowledge-base entry as it appears in a fixture file.
type Note struct {
	Path    string `yaml:"path" json:"path"`
	ID      string `yaml:"id,omitempty" json:"id,omitempty"`
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content,omitempty" json:"content,omitempty"`
}

// Edge is one typed link between notes.
type Edge struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
	Type   string `yaml:"type" json:"type"`
}

// Fixture is a YAML document describing a knowledge base to import.
type Fixture struct {
	Notes []Note `yaml:"notes" json:"notes"`
	Edges []Edge `yaml:"edges" json:"edges"`
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return &f, nil
}

// Import writes a fixture into the store inside one transaction.
// Existing rows with the same keys are replaced. Notes without an id get
// a generated UUID; titles are NFC normalized so lookups behave the same
// regardless of how the source file encoded them.
func (s *Store) Import(ctx context.Context, f *Fixture) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting import: %w", err)
	}
	defer tx.Rollback()

	for _, n := range f.Notes {
		if n.Path == "" {
			return fmt.Errorf("note %q has no path", n.Title)
		}
		id := n.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO notes (path, id, title, content) VALUES (?, ?, ?, ?)",
			n.Path, id, norm.NFC.String(n.Title), n.Content)
		if err != nil {
			return fmt.Errorf("inserting note %s: %w", n.Path, err)
		}
	}

	for _, e := range f.Edges {
		if e.Type == "" {
			e.Type = "wikilink"
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO edges (source, target, type) VALUES (?, ?, ?)",
			e.Source, e.Target, e.Type)
		if err != nil {
			return fmt.Errorf("inserting edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}

	return tx.Commit()
}

// ImportFile loads a fixture file and imports it.
func (s *Store) ImportFile(ctx context.Context, path string) (*Fixture, error) {
	f, err := LoadFixture(path)
	if err != nil {
		return nil, err
	}
	if err := s.Import(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
