// Package memory is an in-process core.Store used by tests, the CLI and the
// STORE_DRIVER=memory mode of the server. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetforms/internal/core"
)

type entry struct {
	seq int64
	core.FormEntry
}

// Store keeps sheets and entries in maps guarded by a single mutex, so every
// operation is atomic with respect to the others.
type Store struct {
	mu      sync.RWMutex
	sheets  map[string]*core.Sheet
	entries map[string][]entry
	seq     int64
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		sheets:  make(map[string]*core.Sheet),
		entries: make(map[string][]entry),
		now:     time.Now,
	}
}

var _ core.Store = (*Store)(nil)

func (s *Store) FindSheet(ctx context.Context, name string) (*core.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.sheets[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneSheet(sh), nil
}

func (s *Store) ListSheets(ctx context.Context) ([]core.SheetSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.SheetSummary, 0, len(s.sheets))
	for _, sh := range s.sheets {
		out = append(out, core.SheetSummary{
			Name:      sh.Name,
			Headers:   cloneStrings(sh.Headers),
			Version:   sh.Version,
			UpdatedAt: sh.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ReplaceSheet(ctx context.Context, p core.ReplaceParams) (*core.ReplaceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sh, exists := s.sheets[p.Name]
	if p.ExpectedVersion > 0 && (!exists || sh.Version != p.ExpectedVersion) {
		return nil, core.ErrVersionConflict
	}

	if !exists {
		sh = &core.Sheet{
			ID:        uuid.NewString(),
			Name:      p.Name,
			Fields:    core.FieldSettings{},
			CreatedAt: now,
		}
		s.sheets[p.Name] = sh
	}
	sh.Headers = cloneStrings(p.Headers)
	sh.Fields = core.PruneFields(sh.Fields, sh.Headers)
	sh.Version++
	sh.UpdatedAt = now

	replaced := int64(len(s.entries[p.Name]))
	rows := make([]entry, 0, len(p.Rows))
	for _, data := range p.Rows {
		s.seq++
		rows = append(rows, entry{seq: s.seq, FormEntry: core.FormEntry{
			ID:        uuid.NewString(),
			SheetName: p.Name,
			Data:      cloneData(data),
			CreatedAt: now,
			UpdatedAt: now,
		}})
	}
	s.entries[p.Name] = rows

	return &core.ReplaceResult{
		Sheet:    cloneSheet(sh),
		Created:  !exists,
		Inserted: len(rows),
		Replaced: replaced,
	}, nil
}

func (s *Store) UpdateFields(ctx context.Context, name string, fields core.FieldSettings, expectedVersion int64) (*core.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.sheets[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	if expectedVersion > 0 && sh.Version != expectedVersion {
		return nil, core.ErrVersionConflict
	}
	sh.Fields = cloneFields(fields)
	sh.Version++
	sh.UpdatedAt = s.now()
	return cloneSheet(sh), nil
}

func (s *Store) InsertEntry(ctx context.Context, sheetName string, data map[string]string) (*core.FormEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.seq++
	e := entry{seq: s.seq, FormEntry: core.FormEntry{
		ID:        uuid.NewString(),
		SheetName: sheetName,
		Data:      cloneData(data),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	s.entries[sheetName] = append(s.entries[sheetName], e)

	out := e.FormEntry
	out.Data = cloneData(e.Data)
	return &out, nil
}

func (s *Store) Entries(ctx context.Context, sheetName string) ([]core.FormEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.entries[sheetName]
	out := make([]core.FormEntry, 0, len(rows))
	for _, e := range rows {
		fe := e.FormEntry
		fe.Data = cloneData(e.Data)
		out = append(out, fe)
	}
	return out, nil
}

func (s *Store) RecentEntries(ctx context.Context, sheetName string, limit int) ([]core.FormEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.entries[sheetName]
	out := make([]core.FormEntry, 0, min(limit, len(rows)))
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		fe := rows[i].FormEntry
		fe.Data = cloneData(fe.Data)
		out = append(out, fe)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func cloneSheet(sh *core.Sheet) *core.Sheet {
	c := *sh
	c.Headers = cloneStrings(sh.Headers)
	c.Fields = cloneFields(sh.Fields)
	return &c
}

func cloneFields(fields core.FieldSettings) core.FieldSettings {
	out := make(core.FieldSettings, len(fields))
	for k, v := range fields {
		v.Options = append([]string(nil), v.Options...)
		out[k] = v
	}
	return out
}

func cloneData(data map[string]string) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// cloneStrings never returns nil so an empty header row encodes as [].
func cloneStrings(in []string) []string {
	return append(make([]string, 0, len(in)), in...)
}
