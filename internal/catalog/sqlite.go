package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ukm-labs/advisor/internal/domain"
	"github.com/ukm-labs/advisor/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed catalog repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS clubs (
		nama_ukm TEXT PRIMARY KEY,
		kategori TEXT NOT NULL DEFAULT '',
		jenis_kegiatan TEXT NOT NULL DEFAULT '',
		jadwal_latihan TEXT NOT NULL DEFAULT '',
		deskripsi TEXT NOT NULL DEFAULT '',
		nilai_utama TEXT NOT NULL DEFAULT '',
		rowid_order INTEGER
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List returns every club in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Club, error) {
	query := `
		SELECT nama_ukm, kategori, jenis_kegiatan, jadwal_latihan, deskripsi, nilai_utama
		FROM clubs ORDER BY rowid_order`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		if shared.IsSQLiteConflictError(err) {
			return nil, fmt.Errorf("catalog busy: %w", err)
		}
		return nil, fmt.Errorf("query clubs: %w", err)
	}
	defer rows.Close()

	var clubs []domain.Club
	for rows.Next() {
		var c domain.Club
		if err := rows.Scan(&c.Name, &c.Category, &c.Activity, &c.Schedule, &c.Desc, &c.CoreValues); err != nil {
			return nil, fmt.Errorf("scan club row: %w", err)
		}
		clubs = append(clubs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate club rows: %w", err)
	}

	return clubs, nil
}

// Count returns the number of clubs in the catalog.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clubs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count clubs: %w", err)
	}
	return count, nil
}

// ReplaceAll atomically replaces the catalog contents.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, clubs []domain.Club) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clubs`); err != nil {
		return fmt.Errorf("clear clubs: %w", err)
	}

	insert := `
	INSERT INTO clubs (nama_ukm, kategori, jenis_kegiatan, jadwal_latihan, deskripsi, nilai_utama, rowid_order)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(nama_ukm) DO NOTHING`

	for i, c := range clubs {
		if c.Name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert,
			c.Name, c.Category, c.Activity, c.Schedule, c.Desc, c.CoreValues, i,
		); err != nil {
			return fmt.Errorf("insert club %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clubs: %w", err)
	}
	return nil
}
