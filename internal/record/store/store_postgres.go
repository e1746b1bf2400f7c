package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"registrar/internal/record/models"
	"registrar/pkg/platform/sentinel"
)

// DefaultTable is the table PostgresStore uses when none is given.
const DefaultTable = "person_records"

// PostgresStore persists records in PostgreSQL, one row per identifier.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB, table string) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
}

// EnsureSchema creates the records table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			gender        TEXT NOT NULL,
			province      TEXT NOT NULL,
			date_of_birth TEXT NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure records schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, rec *models.Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("put record: identifier is required")
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, gender, province, date_of_birth)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			gender = EXCLUDED.gender,
			province = EXCLUDED.province,
			date_of_birth = EXCLUDED.date_of_birth,
			updated_at = now()
	`, s.table)
	_, err := s.db.ExecContext(ctx, query, rec.ID, rec.Name, string(rec.Gender), string(rec.Province), rec.DateOfBirth)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Record, error) {
	query := fmt.Sprintf(`SELECT id, name, gender, province, date_of_birth FROM %s WHERE id = $1`, s.table)
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find record by id: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Record, error) {
	query := fmt.Sprintf(`SELECT id, name, gender, province, date_of_birth FROM %s ORDER BY id`, s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var rec models.Record
	var gender, province string
	if err := row.Scan(&rec.ID, &rec.Name, &gender, &province, &rec.DateOfBirth); err != nil {
		return nil, err
	}
	rec.Gender = models.Gender(gender)
	rec.Province = models.Province(province)
	return &rec, nil
}
