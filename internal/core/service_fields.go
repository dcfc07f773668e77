package core

import (
	"context"
	"errors"
	"strings"
)

// FieldsView is a sheet's form design.
type FieldsView struct {
	Name    string        `json:"name"`
	Version int64         `json:"version"`
	Headers []string      `json:"headers"`
	Fields  FieldSettings `json:"fields"`
}

// FieldSettings returns the form design of a sheet, with a default text
// field for every header that has no stored setting.
func (s *Service) FieldSettings(ctx context.Context, name string) (*FieldsView, error) {
	const op = "get field settings"

	sheet, err := s.findSheet(ctx, op, name)
	if err != nil {
		return nil, err
	}

	return &FieldsView{
		Name:    sheet.Name,
		Version: sheet.Version,
		Headers: sheet.Headers,
		Fields:  ResolveFields(sheet.Fields, sheet.Headers),
	}, nil
}

// SaveFieldSettings replaces the form design of a sheet. Settings for names
// that are not headers are dropped. A positive expectedVersion must match
// the stored version.
func (s *Service) SaveFieldSettings(ctx context.Context, name string, fields FieldSettings, expectedVersion int64) (*FieldsView, error) {
	const op = "save field settings"

	if expectedVersion < 0 {
		return nil, invalid(op, "version must be a non-negative integer")
	}

	sheet, err := s.findSheet(ctx, op, name)
	if err != nil {
		return nil, err
	}

	normalized, errs := NormalizeFields(fields, sheet.Headers)
	if len(errs) > 0 {
		return nil, &Error{Kind: KindValidation, Op: op, Message: errs.Error(), Err: errs}
	}

	updated, err := s.store.UpdateFields(ctx, name, normalized, expectedVersion)
	if err != nil {
		return nil, internal(op, "unable to save field settings", err)
	}

	changeLogger(ctx, name).Info("field settings saved",
		"fields", len(normalized),
		"version", updated.Version,
	)

	return &FieldsView{
		Name:    updated.Name,
		Version: updated.Version,
		Headers: updated.Headers,
		Fields:  ResolveFields(updated.Fields, updated.Headers),
	}, nil
}

func (s *Service) findSheet(ctx context.Context, op, name string) (*Sheet, error) {
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
	return sheet, nil
}
