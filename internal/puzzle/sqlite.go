package puzzle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore is a puzzle catalog persisted in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the catalog at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, path: path}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating catalog tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		state_to_play INTEGER NOT NULL DEFAULT 0
	);

	-- position is 1-based; collections without sections have no rows here
	CREATE TABLE IF NOT EXISTS sections (
		collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (collection, name)
	);

	-- section is '' for collections without sections
	CREATE TABLE IF NOT EXISTS problems (
		collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
		section TEXT NOT NULL,
		number INTEGER NOT NULL,
		board TEXT NOT NULL,
		PRIMARY KEY (collection, section, number)
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Import stores a validated collection, replacing any collection of the
// same name.
func (s *SQLiteStore) Import(ctx context.Context, c *Collection) (err error) {
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, q := range []string{
		"DELETE FROM problems WHERE collection = ?",
		"DELETE FROM sections WHERE collection = ?",
		"DELETE FROM collections WHERE name = ?",
	} {
		if _, err = tx.ExecContext(ctx, q, c.Name); err != nil {
			return fmt.Errorf("replacing %s: %w", c.Name, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO collections (name, label, state_to_play) VALUES (?, ?, ?)",
		c.Name, c.DisplayLabel(), c.StateToPlay); err != nil {
		return fmt.Errorf("inserting %s: %w", c.Name, err)
	}

	insert := func(section string, entries []Entry) error {
		for _, e := range entries {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO problems (collection, section, number, board) VALUES (?, ?, ?, ?)",
				c.Name, section, e.Number, e.Board); err != nil {
				return fmt.Errorf("inserting problem %d: %w", e.Number, err)
			}
		}
		return nil
	}

	if err = insert("", c.Problems); err != nil {
		return err
	}
	for i, sec := range c.Sections {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO sections (collection, name, position) VALUES (?, ?, ?)",
			c.Name, sec.Name, i+1); err != nil {
			return fmt.Errorf("inserting section %s: %w", sec.Name, err)
		}
		if err = insert(sec.Name, sec.Problems); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

type collectionRow struct {
	label       string
	stateToPlay bool
}

func (s *SQLiteStore) collection(ctx context.Context, name string) (*collectionRow, error) {
	var row collectionRow
	err := s.db.QueryRowContext(ctx,
		"SELECT label, state_to_play FROM collections WHERE name = ?", name,
	).Scan(&row.label, &row.stateToPlay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: KindCollection, Collection: name}
	}
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", name, err)
	}
	return &row, nil
}

// sectionPosition returns 0 for the unnamed section of a collection
// without sections.
func (s *SQLiteStore) sectionPosition(ctx context.Context, collection, section string) (int, error) {
	if section == "" {
		var n int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sections WHERE collection = ?", collection,
		).Scan(&n); err != nil {
			return 0, fmt.Errorf("querying sections of %s: %w", collection, err)
		}
		if n > 0 {
			return 0, &NotFoundError{Kind: KindSection, Collection: collection}
		}
		return 0, nil
	}

	var pos int
	err := s.db.QueryRowContext(ctx,
		"SELECT position FROM sections WHERE collection = ? AND name = ?", collection, section,
	).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &NotFoundError{Kind: KindSection, Collection: collection, Section: section}
	}
	if err != nil {
		return 0, fmt.Errorf("querying section %s: %w", section, err)
	}
	return pos, nil
}

func (s *SQLiteStore) Problem(ctx context.Context, sel Selection) (*Problem, error) {
	col, err := s.collection(ctx, sel.Collection)
	if err != nil {
		return nil, err
	}
	pos, err := s.sectionPosition(ctx, sel.Collection, sel.Section)
	if err != nil {
		return nil, err
	}

	var raw string
	err = s.db.QueryRowContext(ctx,
		"SELECT board FROM problems WHERE collection = ? AND section = ? AND number = ?",
		sel.Collection, sel.Section, sel.Problem,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: KindProblem, Collection: sel.Collection, Section: sel.Section, Problem: sel.Problem}
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", sel, err)
	}

	b, err := ParseBoard(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sel, err)
	}
	return &Problem{
		Selection:       sel,
		CollectionLabel: col.label,
		SectionNumber:   pos,
		StateToPlay:     col.stateToPlay,
		Board:           b,
	}, nil
}

func (s *SQLiteStore) ProblemCount(ctx context.Context, collection, section string) (int, error) {
	if _, err := s.collection(ctx, collection); err != nil {
		return 0, err
	}
	if _, err := s.sectionPosition(ctx, collection, section); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM problems WHERE collection = ? AND section = ?", collection, section,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting problems: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Sections(ctx context.Context, collection string) ([]string, error) {
	if _, err := s.collection(ctx, collection); err != nil {
		return nil, err
	}
	return s.sectionNames(ctx, collection)
}

func (s *SQLiteStore) sectionNames(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sections WHERE collection = ? ORDER BY position", collection)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.label, COUNT(p.number)
		FROM collections c LEFT JOIN problems p ON p.collection = c.name
		GROUP BY c.name, c.label
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	var infos []CollectionInfo
	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Name, &info.Label, &info.Problems); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		infos = append(infos, info)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// single connection: sections are read after the listing cursor closes
	for i := range infos {
		if infos[i].Sections, err = s.sectionNames(ctx, infos[i].Name); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

// Export reads a stored collection back into its file form.
func (s *SQLiteStore) Export(ctx context.Context, name string) (*Collection, error) {
	row, err := s.collection(ctx, name)
	if err != nil {
		return nil, err
	}
	sections, err := s.sectionNames(ctx, name)
	if err != nil {
		return nil, err
	}

	c := &Collection{Name: name, StateToPlay: row.stateToPlay}
	if row.label != name {
		c.Label = row.label
	}
	if len(sections) == 0 {
		c.Problems, err = s.entries(ctx, name, "")
		return c, err
	}
	for _, sec := range sections {
		entries, err := s.entries(ctx, name, sec)
		if err != nil {
			return nil, err
		}
		c.Sections = append(c.Sections, Section{Name: sec, Problems: entries})
	}
	return c, nil
}

func (s *SQLiteStore) entries(ctx context.Context, collection, section string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT number, board FROM problems WHERE collection = ? AND section = ? ORDER BY number",
		collection, section)
	if err != nil {
		return nil, fmt.Errorf("querying problems: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Number, &e.Board); err != nil {
			return nil, fmt.Errorf("scanning problem: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
