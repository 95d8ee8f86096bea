package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"feedtrend/internal/core"
	"feedtrend/internal/months"

	_ "modernc.org/sqlite"
)

var (
	_ months.Store   = (*SQLiteRepository)(nil)
	_ months.Stamper = (*SQLiteRepository)(nil)
)

// SQLiteRepository keeps each month as a months row plus its
// feedback_records rows.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens dbPath and applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps SQLITE_BUSY out of the save path
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save implements months.Writer. The month row and its records are replaced
// in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, key core.MonthKey, set core.RecordSet) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	columns, err := json.Marshal(set.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feedback_records WHERE month_key = ?`, string(key)); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO months (month_key, text_column, columns, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(month_key) DO UPDATE SET
			text_column = excluded.text_column,
			columns = excluded.columns,
			saved_at = excluded.saved_at`,
		string(key), set.TextColumn, string(columns), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert month: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO feedback_records (month_key, position, text, score, label, fields)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range set.Records {
		var fields sql.NullString
		if rec.Fields != nil {
			raw, err := json.Marshal(rec.Fields)
			if err != nil {
				return fmt.Errorf("encode fields of record %d: %w", i, err)
			}
			fields = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, string(key), i, rec.Text, rec.Score, string(rec.Label), fields); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.InfoContext(ctx, "Month saved to SQLite",
		"month", key,
		"records", set.Len())
	return nil
}

// Load implements months.Reader.
func (r *SQLiteRepository) Load(ctx context.Context, key core.MonthKey) (core.RecordSet, error) {
	var textColumn, columns string
	err := r.db.QueryRowContext(ctx,
		`SELECT text_column, columns FROM months WHERE month_key = ?`, string(key)).
		Scan(&textColumn, &columns)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecordSet{}, fmt.Errorf("load %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("get month: %w", err)
	}

	set := core.RecordSet{TextColumn: textColumn}
	if err := json.Unmarshal([]byte(columns), &set.Columns); err != nil {
		return core.RecordSet{}, fmt.Errorf("decode %s columns: %w: %v", key, core.ErrCorruptMonth, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT text, score, fields FROM feedback_records
		WHERE month_key = ?
		ORDER BY position`, string(key))
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("get records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			text   string
			score  float64
			fields sql.NullString
		)
		if err := rows.Scan(&text, &score, &fields); err != nil {
			return core.RecordSet{}, fmt.Errorf("scan record: %w", err)
		}
		var extra map[string]string
		if fields.Valid {
			if err := json.Unmarshal([]byte(fields.String), &extra); err != nil {
				return core.RecordSet{}, fmt.Errorf("decode %s fields: %w: %v", key, core.ErrCorruptMonth, err)
			}
		}
		set.Records = append(set.Records, core.NewRecord(text, score, extra))
	}
	if err := rows.Err(); err != nil {
		return core.RecordSet{}, fmt.Errorf("iterate records: %w", err)
	}

	return set, nil
}

// ListKeys implements months.Lister.
func (r *SQLiteRepository) ListKeys(ctx context.Context) ([]core.MonthKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT month_key FROM months`)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	defer rows.Close()

	var keys []core.MonthKey
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		keys = append(keys, core.MonthKey(k))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate months: %w", err)
	}

	core.SortMonthKeys(keys)
	return keys, nil
}

// Delete implements months.Deleter.
func (r *SQLiteRepository) Delete(ctx context.Context, key core.MonthKey) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feedback_records WHERE month_key = ?`, string(key)); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM months WHERE month_key = ?`, string(key))
	if err != nil {
		return fmt.Errorf("delete month: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete month: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", key, core.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Month deleted from SQLite", "month", key)
	return nil
}

// SavedAt returns when key was last saved.
func (r *SQLiteRepository) SavedAt(ctx context.Context, key core.MonthKey) (time.Time, error) {
	var savedAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT saved_at FROM months WHERE month_key = ?`, string(key)).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("saved at %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get saved at: %w", err)
	}
	return savedAt, nil
}
