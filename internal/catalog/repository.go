package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for line definition persistence.
// This abstraction allows for different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a definition by its unique identifier.
	// Returns ErrLineNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*LineDefinition, error)

	// List retrieves all definitions ordered by name.
	List(ctx context.Context) ([]LineDefinition, error)

	// Create inserts a new definition.
	// Returns ErrLineExists on a duplicate id and ErrPinInUse on a
	// duplicate pin.
	Create(ctx context.Context, def *LineDefinition) error

	// Delete removes a definition by id.
	// Returns ErrLineNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a definition by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*LineDefinition, error) {
	query := `
		SELECT id, name, pin, default_on, created_at, updated_at
		FROM lines
		WHERE id = ?`

	def, err := scanLine(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("querying line by id: %w", err)
	}
	return def, nil
}

// List retrieves all definitions ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]LineDefinition, error) {
	query := `
		SELECT id, name, pin, default_on, created_at, updated_at
		FROM lines
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing lines: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var defs []LineDefinition
	for rows.Next() {
		def, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning line row: %w", err)
		}
		defs = append(defs, *def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line rows: %w", err)
	}
	return defs, nil
}

// Create inserts a new definition.
func (r *SQLiteRepository) Create(ctx context.Context, def *LineDefinition) error {
	if err := Validate(def); err != nil {
		return err
	}

	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now

	defaultOn := 0
	if def.DefaultOn {
		defaultOn = 1
	}

	query := `
		INSERT INTO lines (id, name, pin, default_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		def.ID,
		strings.TrimSpace(def.Name),
		strings.TrimSpace(def.Pin),
		defaultOn,
		def.CreatedAt.Format(time.RFC3339),
		def.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "lines.id"):
			return fmt.Errorf("%w: %s", ErrLineExists, def.ID)
		case isUniqueViolation(err, "lines.pin"):
			return fmt.Errorf("%w: %s", ErrPinInUse, def.Pin)
		default:
			return fmt.Errorf("inserting line: %w", err)
		}
	}
	return nil
}

// Delete removes a definition by id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting line: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanLine.
type scanner interface {
	Scan(dest ...any) error
}

func scanLine(s scanner) (*LineDefinition, error) {
	var def LineDefinition
	var defaultOn int
	var createdAt, updatedAt string

	if err := s.Scan(
		&def.ID,
		&def.Name,
		&def.Pin,
		&defaultOn,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	def.DefaultOn = defaultOn != 0

	var parseErr error
	def.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	def.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &def, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure on the given column. go-sqlite3 exposes this via the error
// string, e.g. "UNIQUE constraint failed: lines.pin".
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
