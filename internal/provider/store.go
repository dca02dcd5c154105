package provider

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Payload kinds stored by the persistent cache.
const (
	kindStructure = "structure"
	kindTracks    = "tracks"
	kindVariant   = "variant"
)

// Store persists fetched provider payloads in DuckDB so repeat runs do
// not hit the remote services.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func OpenStore(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS payloads (
		kind VARCHAR,
		ident VARCHAR,
		body VARCHAR,
		PRIMARY KEY (kind, ident)
	)`)
	return err
}

// Get loads a cached payload into out. The second return is false when
// the payload is absent.
func (s *Store) Get(kind, ident string, out any) (bool, error) {
	var body string
	err := s.db.QueryRow(
		"SELECT body FROM payloads WHERE kind=? AND ident=?",
		kind, ident).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query payload %s/%s: %w", kind, ident, err)
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return false, fmt.Errorf("decode payload %s/%s: %w", kind, ident, err)
	}
	return true, nil
}

// Put stores a payload, replacing any previous one for the same key.
func (s *Store) Put(kind, ident string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload %s/%s: %w", kind, ident, err)
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO payloads (kind, ident, body) VALUES (?, ?, ?)",
		kind, ident, string(body))
	if err != nil {
		return fmt.Errorf("store payload %s/%s: %w", kind, ident, err)
	}
	return nil
}

// Clear removes all cached payloads.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM payloads")
	return err
}
