package sheetproxy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/migration"
	"github.com/julianstephens/weekgrid/internal/sheets"
	"github.com/julianstephens/weekgrid/migrations"
)

var ErrRowNotFound = errors.New("row not found")

// Store keeps sheet rows in a SQLite table. Row indexes are the table's
// primary key and never shift when other rows are deleted.
type Store struct {
	db *sql.DB
}

// Open opens or creates the proxy database at path and applies its
// migrations. ":memory:" keeps everything in process.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create proxy directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open proxy database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	subFS, err := fs.Sub(migrations.FS, "proxy")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to access proxy migrations: %w", err)
	}
	if _, err := migration.NewRunner(db, subFS, migration.SQLite).Apply(logger.Info); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run proxy migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const rowColumns = "row_index, week_start, day, task, start_time, end_time, color, category"

// Read returns the rows of weekStart, or every row when weekStart is empty.
func (s *Store) Read(ctx context.Context, weekStart string) ([]sheets.Row, error) {
	query := "SELECT " + rowColumns + " FROM schedule"
	var args []interface{}
	if weekStart != "" {
		query += " WHERE week_start = ?"
		args = append(args, weekStart)
	}
	query += " ORDER BY row_index"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []sheets.Row{}
	for rows.Next() {
		var r sheets.Row
		if err := rows.Scan(&r.RowIndex, &r.WeekStart, &r.Day, &r.Task, &r.StartTime, &r.EndTime, &r.Color, &r.Category); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Create appends row and returns its row index.
func (s *Store) Create(ctx context.Context, r sheets.Row) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO schedule (week_start, day, task, start_time, end_time, color, category) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.WeekStart, r.Day, r.Task, r.StartTime, r.EndTime, r.Color, r.Category)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// Update overwrites every field of the row at r.RowIndex.
func (s *Store) Update(ctx context.Context, r sheets.Row) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE schedule SET week_start = ?, day = ?, task = ?, start_time = ?, end_time = ?, color = ?, category = ? WHERE row_index = ?",
		r.WeekStart, r.Day, r.Task, r.StartTime, r.EndTime, r.Color, r.Category, r.RowIndex)
	if err != nil {
		return err
	}
	return expectOne(res, r.RowIndex)
}

func (s *Store) Delete(ctx context.Context, rowIndex int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM schedule WHERE row_index = ?", rowIndex)
	if err != nil {
		return err
	}
	return expectOne(res, rowIndex)
}

// Weeks lists the distinct week_start values, oldest first.
func (s *Store) Weeks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT week_start FROM schedule")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weeks := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(weeks, func(i, j int) bool {
		a, errA := sheets.ParseWeekStart(weeks[i])
		b, errB := sheets.ParseWeekStart(weeks[j])
		if errA != nil || errB != nil {
			return weeks[i] < weeks[j]
		}
		return a.Before(b)
	})
	return weeks, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedule").Scan(&n)
	return n, err
}

func expectOne(res sql.Result, rowIndex int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRowNotFound, rowIndex)
	}
	return nil
}
