package fan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"engcalc/internal/fan/migrations"

	_ "github.com/mattn/go-sqlite3"
)

// ErrUnknownFanType is returned when a fan type has no stored points.
var ErrUnknownFanType = errors.New("unknown fan type")

// Store keeps preset performance points per fan type in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion reports the applied migration version.
func (s *Store) SchemaVersion() (int64, error) {
	return migrations.Version(s.db)
}

// FanTypes lists every fan type with stored points, sorted.
func (s *Store) FanTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT fan_type FROM fan_performance ORDER BY fan_type ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fan types: %w", err)
	}
	defer rows.Close()

	types := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan fan type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// Points returns the stored points of fanType ordered by point index.
func (s *Store) Points(ctx context.Context, fanType string) ([]PerformancePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT phi, psi_p, eta
		FROM fan_performance
		WHERE fan_type = ?
		ORDER BY point_index ASC
	`, fanType)
	if err != nil {
		return nil, fmt.Errorf("failed to query fan performance: %w", err)
	}
	defer rows.Close()

	var points []PerformancePoint
	for rows.Next() {
		var p PerformancePoint
		if err := rows.Scan(&p.Phi, &p.PsiP, &p.Eta); err != nil {
			return nil, fmt.Errorf("failed to scan performance point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFanType, fanType)
	}
	return points, nil
}

// Upsert stores p as point index of fanType, replacing any existing point
// at that index.
func (s *Store) Upsert(ctx context.Context, fanType string, index int, p PerformancePoint) error {
	if fanType == "" {
		return errors.New("fan type is empty")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fan_performance (fan_type, point_index, phi, psi_p, eta)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fan_type, point_index) DO UPDATE SET
			phi = excluded.phi,
			psi_p = excluded.psi_p,
			eta = excluded.eta,
			updated_at = CURRENT_TIMESTAMP
	`, fanType, index, p.Phi, p.PsiP, p.Eta)
	if err != nil {
		return fmt.Errorf("failed to upsert performance point: %w", err)
	}
	return nil
}
