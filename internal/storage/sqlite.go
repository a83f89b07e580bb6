//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"survivorrl/internal/model"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sqlx.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sqlx.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveModel(ctx context.Context, meta model.ModelMetadata) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeModel(meta)
	if err != nil {
		return err
	}

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO models (name, version, created_at, payload)
		VALUES (:name, :version, :created_at, :payload)
	`, modelRow{Name: meta.Name, Version: meta.Version, CreatedAt: meta.CreatedAt.String(), Payload: payload})
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: %s v%d", ErrDuplicateVersion, meta.Name, meta.Version)
	}
	return err
}

func (s *SQLiteStore) GetModel(ctx context.Context, name string, version int) (model.ModelMetadata, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.ModelMetadata{}, false, err
	}

	var payload []byte
	err = db.GetContext(ctx, &payload, `SELECT payload FROM models WHERE name = ? AND version = ?`, name, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ModelMetadata{}, false, nil
		}
		return model.ModelMetadata{}, false, err
	}

	meta, err := DecodeModel(payload)
	if err != nil {
		return model.ModelMetadata{}, false, fmt.Errorf("decode model %s v%d: %w", name, version, err)
	}
	return meta, true, nil
}

func (s *SQLiteStore) ListModelVersions(ctx context.Context, name string) ([]model.ModelMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var rows []modelRow
	if err := db.SelectContext(ctx, &rows, `SELECT name, version, created_at, payload FROM models WHERE name = ? ORDER BY version`, name); err != nil {
		return nil, err
	}
	out := make([]model.ModelMetadata, 0, len(rows))
	for _, row := range rows {
		meta, err := DecodeModel(row.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode model %s v%d: %w", row.Name, row.Version, err)
		}
		out = append(out, meta)
	}
	return out, nil
}

func (s *SQLiteStore) ListModelNames(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	names := []string{}
	if err := db.SelectContext(ctx, &names, `SELECT DISTINCT name FROM models ORDER BY name`); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *SQLiteStore) SaveEvaluation(ctx context.Context, result model.EvaluationResult) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeEvaluation(result)
	if err != nil {
		return err
	}

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO evaluations (model_name, model_version, evaluated_at, payload)
		VALUES (:model_name, :model_version, :evaluated_at, :payload)
	`, evaluationRow{
		ModelName:    result.ModelName,
		ModelVersion: result.ModelVersion,
		EvaluatedAt:  result.Timestamp.String(),
		Payload:      payload,
	})
	return err
}

func (s *SQLiteStore) ListEvaluations(ctx context.Context, modelName string) ([]model.EvaluationResult, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var payloads [][]byte
	if err := db.SelectContext(ctx, &payloads, `SELECT payload FROM evaluations WHERE model_name = ? ORDER BY id`, modelName); err != nil {
		return nil, err
	}
	out := make([]model.EvaluationResult, 0, len(payloads))
	for _, payload := range payloads {
		result, err := DecodeEvaluation(payload)
		if err != nil {
			return nil, fmt.Errorf("decode evaluation %s: %w", modelName, err)
		}
		out = append(out, result)
	}
	return out, nil
}

func (s *SQLiteStore) SaveComparison(ctx context.Context, comparison model.ModelComparison) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}

	comparison = withComparisonID(comparison)
	payload, err := EncodeComparison(comparison)
	if err != nil {
		return "", err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO comparisons (id, compared_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			compared_at = excluded.compared_at,
			payload = excluded.payload
	`, comparison.ID, comparison.Timestamp.String(), payload)
	if err != nil {
		return "", err
	}
	return comparison.ID, nil
}

func (s *SQLiteStore) GetComparison(ctx context.Context, id string) (model.ModelComparison, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.ModelComparison{}, false, err
	}

	var payload []byte
	err = db.GetContext(ctx, &payload, `SELECT payload FROM comparisons WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ModelComparison{}, false, nil
		}
		return model.ModelComparison{}, false, err
	}

	comparison, err := DecodeComparison(payload)
	if err != nil {
		return model.ModelComparison{}, false, fmt.Errorf("decode comparison %s: %w", id, err)
	}
	return comparison, true, nil
}

func (s *SQLiteStore) ListComparisonIDs(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	ids := []string{}
	if err := db.SelectContext(ctx, &ids, `SELECT id FROM comparisons ORDER BY rowid`); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

type modelRow struct {
	Name      string `db:"name"`
	Version   int    `db:"version"`
	CreatedAt string `db:"created_at"`
	Payload   []byte `db:"payload"`
}

type evaluationRow struct {
	ModelName    string `db:"model_name"`
	ModelVersion int    `db:"model_version"`
	EvaluatedAt  string `db:"evaluated_at"`
	Payload      []byte `db:"payload"`
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func createTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS models (
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (name, version)
		);
		CREATE TABLE IF NOT EXISTS evaluations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model_name TEXT NOT NULL,
			model_version INTEGER NOT NULL,
			evaluated_at TEXT NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS evaluations_model_name ON evaluations (model_name);
		CREATE TABLE IF NOT EXISTS comparisons (
			id TEXT PRIMARY KEY,
			compared_at TEXT NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
