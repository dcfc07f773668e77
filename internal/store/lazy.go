// Package store provides a lazily opened core.Store.
//
// The server starts without touching the database. The first request that
// needs the store opens it; concurrent first requests share one attempt. A
// failed attempt is not remembered, so the next request tries again.
package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/sheetforms/internal/core"
)

// Opener opens the underlying store.
type Opener func(ctx context.Context) (core.Store, error)

// Lazy is a core.Store that opens its backend on first use.
type Lazy struct {
	open  Opener
	group singleflight.Group

	mu    sync.RWMutex
	store core.Store
}

var _ core.Store = (*Lazy)(nil)

// NewLazy returns a store that calls open on first use.
func NewLazy(open Opener) *Lazy {
	return &Lazy{open: open}
}

// Get returns the opened store, opening it if needed.
func (l *Lazy) Get(ctx context.Context) (core.Store, error) {
	l.mu.RLock()
	s := l.store
	l.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	v, err, _ := l.group.Do("open", func() (any, error) {
		l.mu.RLock()
		s := l.store
		l.mu.RUnlock()
		if s != nil {
			return s, nil
		}

		// Shared by every waiter, so one caller's cancellation must not
		// abort it. The opener bounds it with its own timeout.
		s, err := l.open(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.store = s
		l.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(core.Store), nil
}

// Opened reports whether the backend has been opened.
func (l *Lazy) Opened() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store != nil
}

// Close closes the backend if it was opened and supports closing.
func (l *Lazy) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.store.(interface{ Close() }); ok {
		c.Close()
	}
	l.store = nil
}

func (l *Lazy) FindSheet(ctx context.Context, name string) (*core.Sheet, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.FindSheet(ctx, name)
}

func (l *Lazy) ListSheets(ctx context.Context) ([]core.SheetSummary, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListSheets(ctx)
}

func (l *Lazy) ReplaceSheet(ctx context.Context, p core.ReplaceParams) (*core.ReplaceResult, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ReplaceSheet(ctx, p)
}

func (l *Lazy) UpdateFields(ctx context.Context, name string, fields core.FieldSettings, expectedVersion int64) (*core.Sheet, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.UpdateFields(ctx, name, fields, expectedVersion)
}

func (l *Lazy) InsertEntry(ctx context.Context, sheetName string, data map[string]string) (*core.FormEntry, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.InsertEntry(ctx, sheetName, data)
}

func (l *Lazy) Entries(ctx context.Context, sheetName string) ([]core.FormEntry, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Entries(ctx, sheetName)
}

func (l *Lazy) RecentEntries(ctx context.Context, sheetName string, limit int) ([]core.FormEntry, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.RecentEntries(ctx, sheetName, limit)
}

func (l *Lazy) Ping(ctx context.Context) error {
	s, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}
