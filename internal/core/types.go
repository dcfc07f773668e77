// Package core provides the business logic for sheets and form entries.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"io"
	"time"
)

// FieldType is the input type a form field is rendered with.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldDropdown FieldType = "dropdown"
	FieldDate     FieldType = "date"
)

// FieldTypes lists every supported field type in display order.
var FieldTypes = []FieldType{FieldText, FieldNumber, FieldTextarea, FieldDropdown, FieldDate}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// FieldSetting is the form design for a single header.
type FieldSetting struct {
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"` // dropdown values, in order
}

// FieldSettings maps header name to its form design.
type FieldSettings map[string]FieldSetting

// Sheet is the canonical sheet record: a name, its ordered headers and the
// form design for those headers. Row data lives in FormEntry records.
type Sheet struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Headers   []string      `json:"headers"`
	Fields    FieldSettings `json:"fields"`
	Version   int64         `json:"version"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SheetSummary is the listing view of a sheet.
type SheetSummary struct {
	Name      string    `json:"name"`
	Headers   []string  `json:"headers"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FormEntry is one submitted row, keyed by header name.
type FormEntry struct {
	ID        string            `json:"id"`
	SheetName string            `json:"sheetName"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// SheetView is the display payload for a sheet: the stored record plus all
// of its entries and the grid projected from them.
type SheetView struct {
	Name    string        `json:"name"`
	Headers []string      `json:"headers"`
	Entries []FormEntry   `json:"entries"`
	Fields  FieldSettings `json:"fields"`
	Version int64         `json:"version"`
	Grid    [][]string    `json:"grid"`
	Exists  bool          `json:"exists"`
}

// ReplaceParams describes a full replacement of a sheet's headers and entries.
type ReplaceParams struct {
	Name    string
	Headers []string
	Rows    []map[string]string

	// ExpectedVersion, when positive, must equal the stored version or the
	// replace fails with ErrVersionConflict. Zero replaces unconditionally.
	ExpectedVersion int64
}

// ReplaceResult reports what a replace did.
type ReplaceResult struct {
	Sheet    *Sheet
	Created  bool  // sheet did not exist before
	Inserted int   // entries written
	Replaced int64 // prior entries deleted
}

// Store is the document store holding sheets and form entries.
//
// Implementations return ErrNotFound for missing sheets and
// ErrVersionConflict when an expected version does not match.
type Store interface {
	// FindSheet returns the sheet with the given name.
	FindSheet(ctx context.Context, name string) (*Sheet, error)

	// ListSheets returns every sheet ordered by name.
	ListSheets(ctx context.Context) ([]SheetSummary, error)

	// ReplaceSheet upserts the sheet headers, deletes every entry for the
	// sheet and inserts the given rows, atomically.
	ReplaceSheet(ctx context.Context, params ReplaceParams) (*ReplaceResult, error)

	// UpdateFields overwrites the sheet's field settings and bumps its version.
	UpdateFields(ctx context.Context, name string, fields FieldSettings, expectedVersion int64) (*Sheet, error)

	// InsertEntry persists a new entry. It does not check that the sheet exists.
	InsertEntry(ctx context.Context, sheetName string, data map[string]string) (*FormEntry, error)

	// Entries returns every entry for the sheet, oldest first.
	Entries(ctx context.Context, sheetName string) ([]FormEntry, error)

	// RecentEntries returns at most limit entries for the sheet, newest first.
	RecentEntries(ctx context.Context, sheetName string, limit int) ([]FormEntry, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}

// Codec converts between a 2-D grid of strings and a binary workbook.
type Codec interface {
	Encode(grid [][]string) ([]byte, error)
	Decode(r io.Reader) ([][]string, error)
}
