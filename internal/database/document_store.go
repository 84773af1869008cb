package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentStore reads and writes whole JSON documents in the documents
// table. It is the durable equivalent of the browser's localStorage: one
// value per key, replaced in full on every write.
type DocumentStore struct{}

// NewDocumentStore creates a new store instance
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

// Get unmarshals the document stored under key into out. The boolean is
// false when no document exists.
func (s *DocumentStore) Get(key string, out interface{}) (bool, error) {
	var raw string
	query := "SELECT value FROM documents WHERE key = ?"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", -1)
	}
	err := DB.Get(&raw, query, key)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get document %q: %v", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode document %q: %v", key, err)
	}
	return true, nil
}

// Put replaces the document stored under key
func (s *DocumentStore) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document %q: %v", key, err)
	}
	query := `
		INSERT INTO documents (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
		query = strings.Replace(query, "?", "$2", 1)
	}
	_, err = DB.Exec(query, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to put document %q: %v", key, err)
	}
	return nil
}

// Delete removes the document stored under key. Missing keys are not an
// error.
func (s *DocumentStore) Delete(key string) error {
	query := "DELETE FROM documents WHERE key = ?"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", -1)
	}
	_, err := DB.Exec(query, key)
	if err != nil {
		return fmt.Errorf("failed to delete document %q: %v", key, err)
	}
	return nil
}
