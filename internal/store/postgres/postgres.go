// Package postgres is the PostgreSQL core.Store. Sheets and form entries are
// JSONB documents in two tables; a grid save is one transaction.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/sheetforms/internal/config"
	"github.com/JonMunkholm/sheetforms/internal/core"
)

// Store implements core.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects a pool using cfg and verifies it with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(pool), nil
}

// Pool returns the underlying pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const sheetColumns = `id, name, headers, fields, version, created_at, updated_at`

func (s *Store) FindSheet(ctx context.Context, name string) (*core.Sheet, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sheetColumns+` FROM sheets WHERE name = $1`, name)
	return scanSheet(row)
}

func (s *Store) ListSheets(ctx context.Context) ([]core.SheetSummary, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, headers, version, updated_at FROM sheets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.SheetSummary, error) {
		var (
			sum     core.SheetSummary
			headers []byte
		)
		if err := row.Scan(&sum.Name, &headers, &sum.Version, &sum.UpdatedAt); err != nil {
			return sum, err
		}
		if err := json.Unmarshal(headers, &sum.Headers); err != nil {
			return sum, fmt.Errorf("decode headers of %q: %w", sum.Name, err)
		}
		return sum, nil
	})
}

// ReplaceSheet creates the sheet when missing, locks its row, rewrites the
// headers and swaps every entry for the given rows. Concurrent saves of the
// same sheet serialize on the row lock.
func (s *Store) ReplaceSheet(ctx context.Context, p core.ReplaceParams) (*core.ReplaceResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO sheets (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		newID(), p.Name)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	created := tag.RowsAffected() == 1

	sheet, err := scanSheet(tx.QueryRow(ctx,
		`SELECT `+sheetColumns+` FROM sheets WHERE name = $1 FOR UPDATE`, p.Name))
	if err != nil {
		return nil, err
	}
	if p.ExpectedVersion > 0 && (created || sheet.Version != p.ExpectedVersion) {
		return nil, core.ErrVersionConflict
	}

	headers, err := json.Marshal(p.Headers)
	if err != nil {
		return nil, fmt.Errorf("encode headers: %w", err)
	}
	fields, err := json.Marshal(core.PruneFields(sheet.Fields, p.Headers))
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	err = tx.QueryRow(ctx,
		`UPDATE sheets SET headers = $2, fields = $3, version = version + 1, updated_at = now()
		 WHERE name = $1 RETURNING version, updated_at`,
		p.Name, headers, fields,
	).Scan(&sheet.Version, &sheet.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update sheet: %w", err)
	}
	sheet.Headers = append(make([]string, 0, len(p.Headers)), p.Headers...)
	sheet.Fields = core.PruneFields(sheet.Fields, p.Headers)

	tag, err = tx.Exec(ctx, `DELETE FROM form_entries WHERE sheet_name = $1`, p.Name)
	if err != nil {
		return nil, fmt.Errorf("delete entries: %w", err)
	}
	replaced := tag.RowsAffected()

	now := time.Now()
	copyRows := make([][]any, 0, len(p.Rows))
	for _, data := range p.Rows {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode entry: %w", err)
		}
		copyRows = append(copyRows, []any{newID(), p.Name, raw, now, now})
	}

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"form_entries"},
		[]string{"id", "sheet_name", "data", "created_at", "updated_at"},
		pgx.CopyFromRows(copyRows),
	)
	if err != nil {
		return nil, fmt.Errorf("insert entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &core.ReplaceResult{
		Sheet:    sheet,
		Created:  created,
		Inserted: int(inserted),
		Replaced: replaced,
	}, nil
}

func (s *Store) UpdateFields(ctx context.Context, name string, fields core.FieldSettings, expectedVersion int64) (*core.Sheet, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	sheet, err := scanSheet(s.pool.QueryRow(ctx,
		`UPDATE sheets SET fields = $2, version = version + 1, updated_at = now()
		 WHERE name = $1 AND ($3::bigint = 0 OR version = $3::bigint)
		 RETURNING `+sheetColumns,
		name, raw, expectedVersion))
	if !errors.Is(err, core.ErrNotFound) {
		return sheet, err
	}

	// No row updated: either the sheet is gone or the version moved.
	if _, findErr := s.FindSheet(ctx, name); findErr != nil {
		return nil, findErr
	}
	return nil, core.ErrVersionConflict
}

func (s *Store) InsertEntry(ctx context.Context, sheetName string, data map[string]string) (*core.FormEntry, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`INSERT INTO form_entries (id, sheet_name, data) VALUES ($1, $2, $3)
		 RETURNING `+entryColumns,
		newID(), sheetName, raw)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	entry, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return &entry, nil
}

const entryColumns = `id, sheet_name, data, created_at, updated_at`

func (s *Store) Entries(ctx context.Context, sheetName string) ([]core.FormEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM form_entries WHERE sheet_name = $1 ORDER BY seq`,
		sheetName)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return pgx.CollectRows(rows, scanEntry)
}

func (s *Store) RecentEntries(ctx context.Context, sheetName string, limit int) ([]core.FormEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM form_entries WHERE sheet_name = $1 ORDER BY seq DESC LIMIT $2`,
		sheetName, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return pgx.CollectRows(rows, scanEntry)
}

func scanSheet(row pgx.Row) (*core.Sheet, error) {
	var (
		sh              core.Sheet
		id              pgtype.UUID
		headers, fields []byte
	)
	err := row.Scan(&id, &sh.Name, &headers, &fields, &sh.Version, &sh.CreatedAt, &sh.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sheet: %w", err)
	}

	sh.ID = uuid.UUID(id.Bytes).String()
	if err := json.Unmarshal(headers, &sh.Headers); err != nil {
		return nil, fmt.Errorf("decode headers of %q: %w", sh.Name, err)
	}
	if err := json.Unmarshal(fields, &sh.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of %q: %w", sh.Name, err)
	}
	if sh.Headers == nil {
		sh.Headers = []string{}
	}
	if sh.Fields == nil {
		sh.Fields = core.FieldSettings{}
	}
	return &sh, nil
}

func scanEntry(row pgx.CollectableRow) (core.FormEntry, error) {
	var (
		e    core.FormEntry
		id   pgtype.UUID
		data []byte
	)
	if err := row.Scan(&id, &e.SheetName, &data, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return e, err
	}
	e.ID = uuid.UUID(id.Bytes).String()
	if err := json.Unmarshal(data, &e.Data); err != nil {
		return e, fmt.Errorf("decode entry %s: %w", e.ID, err)
	}
	return e, nil
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}
