package core

import (
	"context"
	"errors"
	"strings"
)

// CreateEntry stores a submitted form row for an existing sheet.
//
// The data keys are not checked against the sheet headers. Fields marked
// required in the sheet's design must be present and non-blank.
func (s *Service) CreateEntry(ctx context.Context, sheetName string, data map[string]string) (*FormEntry, error) {
	const op = "create entry"

	if strings.TrimSpace(sheetName) == "" {
		return nil, missingParameter(op, "sheet name")
	}
	if data == nil {
		return nil, invalid(op, "data must be an object")
	}

	sheet, err := s.store.FindSheet(ctx, sheetName)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound(op, "sheet not found")
	}
	if err != nil {
		return nil, internal(op, "unable to save form entry", err)
	}

	if missing := CheckRequired(sheet.Headers, sheet.Fields, data); len(missing) > 0 {
		return nil, &Error{
			Kind:    KindValidation,
			Op:      op,
			Message: "missing required fields: " + strings.Join(missing.Fields(), ", "),
			Err:     missing,
		}
	}

	entry, err := s.store.InsertEntry(ctx, sheetName, data)
	if err != nil {
		return nil, internal(op, "unable to save form entry", err)
	}

	changeLogger(ctx, sheetName).Debug("form entry created", "entry_id", entry.ID)
	return entry, nil
}

// RecentEntries returns the newest entries of a sheet, newest first, capped
// at the configured entry list limit. An unknown sheet has no entries.
func (s *Service) RecentEntries(ctx context.Context, sheetName string) ([]FormEntry, error) {
	const op = "list entries"

	if strings.TrimSpace(sheetName) == "" {
		return nil, missingParameter(op, "sheet name")
	}

	entries, err := s.store.RecentEntries(ctx, sheetName, s.entryLimit)
	if err != nil {
		return nil, internal(op, "unable to fetch entries", err)
	}
	if entries == nil {
		entries = []FormEntry{}
	}
	return entries, nil
}
