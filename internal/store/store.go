package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"
)

const cacheSize = 512

type cacheEntry struct {
	payload   string
	createdAt time.Time
	updatedAt time.Time
}

// Store is an embedded document store: named collections of JSON
// documents backed by a single SQLite file. Every exported operation is
// atomic with respect to the others; there are no cross-document
// transactions.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	cache *lru.Cache[string, cacheEntry]
}

func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, err
	}

	cache, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, cache: cache}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema() error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	_, _ = s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion)
	return nil
}

func (s *Store) Close() error {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		// Checkpoint failure is not critical, the DB still closes cleanly.
	}
	return s.db.Close()
}

// CreateCollection creates an empty collection. It fails with ErrExists
// if the id is already taken.
func (s *Store) CreateCollection(id string) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.collectionExists(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("collection %s: %w", id, ErrExists)
	}

	if _, err := s.db.Exec("INSERT INTO collections (id) VALUES (?)", id); err != nil {
		return nil, fmt.Errorf("create collection %s: %w", id, err)
	}

	return &Collection{ID: id}, nil
}

// GetCollection returns the collection with its documents in insertion
// order. It fails with ErrNotFound if the collection does not exist.
func (s *Store) GetCollection(id string) (*Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, err := s.collectionExists(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}

	rows, err := s.db.Query(`
		SELECT doc_id, payload, created_at, updated_at
		FROM documents WHERE collection_id = ? ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", id, err)
	}
	defer rows.Close()

	col := &Collection{ID: id}

	for rows.Next() {
		doc := &Document{CollectionID: id}
		var raw string
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(&doc.ID, &raw, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		if doc.Payload, err = decodePayload(raw); err != nil {
			return nil, fmt.Errorf("decode document %s/%s: %w", id, doc.ID, err)
		}
		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			doc.UpdatedAt = updatedAt.Time
		}

		col.Documents = append(col.Documents, doc)
	}

	return col, rows.Err()
}

// HasCollection is a non-failing existence probe.
func (s *Store) HasCollection(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, err := s.collectionExists(id)
	return err == nil && exists
}

// CreateDocument inserts a new document and returns the stored value.
// It fails with ErrNotFound if the collection is absent and ErrExists
// if the document id is already taken within the collection.
func (s *Store) CreateDocument(collectionID, id string, payload map[string]any) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.collectionExists(collectionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
	}

	if taken, err := s.documentExists(collectionID, id); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("document %s/%s: %w", collectionID, id, ErrExists)
	}

	raw, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode document %s/%s: %w", collectionID, id, err)
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`
		INSERT INTO documents (collection_id, doc_id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, collectionID, id, raw, now, now)
	if err != nil {
		return nil, fmt.Errorf("create document %s/%s: %w", collectionID, id, err)
	}

	s.cache.Add(cacheKey(collectionID, id), cacheEntry{payload: raw, createdAt: now, updatedAt: now})

	return s.documentFromRaw(collectionID, id, raw, now, now)
}

// GetDocument fails with ErrNotFound if the document is absent.
func (s *Store) GetDocument(collectionID, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, ok := s.cache.Get(cacheKey(collectionID, id)); ok {
		return s.documentFromRaw(collectionID, id, entry.payload, entry.createdAt, entry.updatedAt)
	}

	var raw string
	var createdAt, updatedAt sql.NullTime

	err := s.db.QueryRow(`
		SELECT payload, created_at, updated_at
		FROM documents WHERE collection_id = ? AND doc_id = ?
	`, collectionID, id).Scan(&raw, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s/%s: %w", collectionID, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s/%s: %w", collectionID, id, err)
	}

	s.cache.Add(cacheKey(collectionID, id), cacheEntry{
		payload:   raw,
		createdAt: createdAt.Time,
		updatedAt: updatedAt.Time,
	})

	return s.documentFromRaw(collectionID, id, raw, createdAt.Time, updatedAt.Time)
}

// UpdateDocument replaces the whole payload and returns the new value.
// It fails with ErrNotFound if the document is absent.
func (s *Store) UpdateDocument(collectionID, id string, payload map[string]any) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode document %s/%s: %w", collectionID, id, err)
	}

	now := time.Now().UTC()
	result, err := s.db.Exec(`
		UPDATE documents SET payload = ?, updated_at = ?
		WHERE collection_id = ? AND doc_id = ?
	`, raw, now, collectionID, id)
	if err != nil {
		return nil, fmt.Errorf("update document %s/%s: %w", collectionID, id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("document %s/%s: %w", collectionID, id, ErrNotFound)
	}

	s.cache.Remove(cacheKey(collectionID, id))

	var createdAt sql.NullTime
	_ = s.db.QueryRow(
		"SELECT created_at FROM documents WHERE collection_id = ? AND doc_id = ?",
		collectionID, id,
	).Scan(&createdAt)

	return s.documentFromRaw(collectionID, id, raw, createdAt.Time, now)
}

// DeleteDocument removes the document and returns its last value.
func (s *Store) DeleteDocument(collectionID, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	var createdAt, updatedAt sql.NullTime

	err := s.db.QueryRow(`
		SELECT payload, created_at, updated_at
		FROM documents WHERE collection_id = ? AND doc_id = ?
	`, collectionID, id).Scan(&raw, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s/%s: %w", collectionID, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("delete document %s/%s: %w", collectionID, id, err)
	}

	if _, err := s.db.Exec(`
		DELETE FROM documents WHERE collection_id = ? AND doc_id = ?
	`, collectionID, id); err != nil {
		return nil, fmt.Errorf("delete document %s/%s: %w", collectionID, id, err)
	}

	s.cache.Remove(cacheKey(collectionID, id))

	return s.documentFromRaw(collectionID, id, raw, createdAt.Time, updatedAt.Time)
}

// HasDocument is a non-failing existence probe, used by callers to pick
// between create and update.
func (s *Store) HasDocument(collectionID, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache.Contains(cacheKey(collectionID, id)) {
		return true
	}

	exists, err := s.documentExists(collectionID, id)
	return err == nil && exists
}

// UpsertDocument inserts or fully replaces a document in one statement,
// so a check-then-act upsert cannot race with a concurrent create of
// the same id. The collection must exist.
func (s *Store) UpsertDocument(collectionID, id string, payload map[string]any) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.collectionExists(collectionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
	}

	raw, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode document %s/%s: %w", collectionID, id, err)
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`
		INSERT INTO documents (collection_id, doc_id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection_id, doc_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, collectionID, id, raw, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert document %s/%s: %w", collectionID, id, err)
	}

	s.cache.Remove(cacheKey(collectionID, id))

	var createdAt sql.NullTime
	_ = s.db.QueryRow(
		"SELECT created_at FROM documents WHERE collection_id = ? AND doc_id = ?",
		collectionID, id,
	).Scan(&createdAt)

	return s.documentFromRaw(collectionID, id, raw, createdAt.Time, now)
}

func (s *Store) collectionExists(id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM collections WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe collection %s: %w", id, err)
	}
	return exists, nil
}

func (s *Store) documentExists(collectionID, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM documents WHERE collection_id = ? AND doc_id = ?)",
		collectionID, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe document %s/%s: %w", collectionID, id, err)
	}
	return exists, nil
}

// documentFromRaw decodes a fresh payload map per call so callers never
// share mutable state through the cache.
func (s *Store) documentFromRaw(collectionID, id, raw string, createdAt, updatedAt time.Time) (*Document, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collectionID, id, err)
	}
	return &Document{
		CollectionID: collectionID,
		ID:           id,
		Payload:      payload,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func cacheKey(collectionID, id string) string {
	return collectionID + "/" + id
}
