package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// SQLiteStore keeps every collection in a single documents table. Meant for local runs.
type SQLiteStore struct {
	db     *sql.DB
	name   string
	logger *zerolog.Logger
	now    func() time.Time
}

func NewSQLiteStore(path, name string, logger *zerolog.Logger) (*SQLiteStore, error) {
	logger = nopIfNil(logger)

	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("sqlite document store initialized")
	return &SQLiteStore{db: db, name: name, logger: logger, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS documents (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            collection TEXT NOT NULL,
            body TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateDocument(ctx context.Context, collection string, record any) (string, error) {
	now := s.now()
	fields, err := toFields(record, now)
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, body, created_at) VALUES (?, ?, ?)`,
		collection, string(body), now.UTC())
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *SQLiteStore) GetDocuments(ctx context.Context, collection string, limit int) ([]Document, error) {
	query := `SELECT id, body FROM documents WHERE collection = ? ORDER BY id`
	args := []any{collection}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &Error{Op: "find", Collection: collection, Err: err}
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			id   int64
			body string
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, &Error{Op: "find", Collection: collection, Err: err}
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			s.logger.Warn().Err(err).Str("collection", collection).Int64("id", id).Msg("skip unreadable document")
			continue
		}
		docs = append(docs, Document{ID: strconv.FormatInt(id, 10), Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "find", Collection: collection, Err: err}
	}
	return docs, nil
}

func (s *SQLiteStore) Status(ctx context.Context) Status {
	status := Status{State: StateConnected, Name: s.name}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		status.State = StateConnectedWithError
		status.Err = err
		return status
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			status.State = StateConnectedWithError
			status.Err = err
			return status
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		status.State = StateConnectedWithError
		status.Err = err
		return status
	}
	status.Collections = truncateCollections(names)
	return status
}

func (s *SQLiteStore) Close(_ context.Context) error {
	return s.db.Close()
}

// Backup writes a consistent copy of the database into dir using VACUUM INTO
// and returns the path of the copy.
func (s *SQLiteStore) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := filepath.Join(dir, fmt.Sprintf("backup_%s.db", s.now().Format("20060102_150405")))
	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup %s already exists", backupPath)
	}

	s.logger.Info().Str("path", backupPath).Msg("Performing database backup using VACUUM INTO")
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, backupPath); err != nil {
		return "", fmt.Errorf("backup database: %w", err)
	}
	return backupPath, nil
}
