package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/sheetforms/internal/logging"
)

// SaveGridRequest is a grid submitted for a sheet. Row 0 is the header row.
type SaveGridRequest struct {
	Name            string
	Grid            [][]string
	ExpectedVersion int64 // 0 saves unconditionally
}

// SaveResult reports a grid save.
//
// Saving a grid replaces every entry of the sheet: Replaced counts the
// entries that existed before the save and are now gone.
type SaveResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Count    int    `json:"count"`
	Replaced int64  `json:"replaced"`
	Version  int64  `json:"version"`
	Created  bool   `json:"created"`
}

// Workbook is an exported spreadsheet file.
type Workbook struct {
	Filename string
	Data     []byte
}

// WorkbookContentType is the MIME type of exported workbooks.
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SaveGrid splits the grid into headers and entries and replaces the sheet's
// stored headers and entries with them in one store transaction.
func (s *Service) SaveGrid(ctx context.Context, req SaveGridRequest) (*SaveResult, error) {
	const op = "save grid"

	if strings.TrimSpace(req.Name) == "" {
		return nil, missingParameter(op, "sheet name")
	}
	if len(req.Grid) == 0 {
		return nil, invalid(op, "data must be a non-empty array of rows")
	}
	if req.ExpectedVersion < 0 {
		return nil, invalid(op, "version must be a non-negative integer")
	}

	headers, rows := SplitGrid(req.Grid)

	res, err := s.store.ReplaceSheet(ctx, ReplaceParams{
		Name:            req.Name,
		Headers:         headers,
		Rows:            rows,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return nil, internal(op, "unable to save sheet", err)
	}

	changeLogger(ctx, req.Name).Info("sheet saved",
		"headers", len(headers),
		"inserted", res.Inserted,
		"replaced", res.Replaced,
		"version", res.Sheet.Version,
		"created", res.Created,
	)

	return &SaveResult{
		Success:  true,
		Message:  fmt.Sprintf("saved %d entries to sheet %q", res.Inserted, req.Name),
		Count:    res.Inserted,
		Replaced: res.Replaced,
		Version:  res.Sheet.Version,
		Created:  res.Created,
	}, nil
}

// ReadSheet returns the sheet with all of its entries and the projected grid.
// A sheet that does not exist yields an empty view, not an error.
func (s *Service) ReadSheet(ctx context.Context, name string) (*SheetView, error) {
	const op = "read sheet"

	if strings.TrimSpace(name) == "" {
		return nil, missingParameter(op, "sheet name")
	}

	sheet, err := s.store.FindSheet(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return &SheetView{
			Name:    name,
			Headers: []string{},
			Entries: []FormEntry{},
			Fields:  FieldSettings{},
			Grid:    EmptyGrid(),
		}, nil
	}
	if err != nil {
		return nil, internal(op, "unable to fetch sheet", err)
	}

	entries, err := s.store.Entries(ctx, name)
	if err != nil {
		return nil, internal(op, "unable to fetch sheet", err)
	}
	if entries == nil {
		entries = []FormEntry{}
	}

	return &SheetView{
		Name:    sheet.Name,
		Headers: sheet.Headers,
		Entries: entries,
		Fields:  ResolveFields(sheet.Fields, sheet.Headers),
		Version: sheet.Version,
		Grid:    ProjectGrid(sheet.Headers, entries),
		Exists:  true,
	}, nil
}

// ExportSheet encodes the sheet's grid as a workbook.
// Unlike ReadSheet, a missing sheet is an error.
func (s *Service) ExportSheet(ctx context.Context, name string) (*Workbook, error) {
	const op = "export sheet"

	if strings.TrimSpace(name) == "" {
		return nil, missingParameter(op, "sheet name")
	}

	sheet, err := s.store.FindSheet(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound(op, "sheet not found")
	}
	if err != nil {
		return nil, internal(op, "unable to fetch sheet", err)
	}

	entries, err := s.store.Entries(ctx, name)
	if err != nil {
		return nil, internal(op, "unable to fetch sheet", err)
	}

	grid := ProjectGrid(sheet.Headers, entries)

	var data []byte
	err = s.limiter.run(ctx, func() error {
		var encErr error
		data, encErr = s.codec.Encode(grid)
		return encErr
	})
	if err != nil {
		return nil, internal(op, "unable to export sheet", err)
	}

	logging.WithFields(ctx, "sheet", name).Debug("sheet exported",
		"rows", len(entries),
		"bytes", len(data),
	)

	return &Workbook{Filename: name + ".xlsx", Data: data}, nil
}

// ImportWorkbook decodes the first worksheet of an xlsx and saves it as the
// sheet's grid, with the same replace semantics as SaveGrid.
func (s *Service) ImportWorkbook(ctx context.Context, name string, r io.Reader, expectedVersion int64) (*SaveResult, error) {
	const op = "import workbook"

	if strings.TrimSpace(name) == "" {
		return nil, missingParameter(op, "sheet name")
	}

	var grid [][]string
	err := s.limiter.run(ctx, func() error {
		var decErr error
		grid, decErr = s.codec.Decode(r)
		if decErr != nil {
			return &Error{Kind: KindValidation, Op: op, Message: "file is not a readable workbook", Err: decErr}
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindValidation {
			return nil, err
		}
		return nil, internal(op, "unable to import workbook", err)
	}
	if len(grid) == 0 {
		return nil, invalid(op, "workbook has no rows")
	}

	return s.SaveGrid(ctx, SaveGridRequest{
		Name:            name,
		Grid:            grid,
		ExpectedVersion: expectedVersion,
	})
}

// ListSheets returns a summary of every sheet ordered by name.
func (s *Service) ListSheets(ctx context.Context) ([]SheetSummary, error) {
	sheets, err := s.store.ListSheets(ctx)
	if err != nil {
		return nil, internal("list sheets", "unable to list sheets", err)
	}
	if sheets == nil {
		sheets = []SheetSummary{}
	}
	return sheets, nil
}
