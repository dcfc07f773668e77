package core

// convert.go turns loosely typed JSON payloads into the string cells the
// service stores.
//
// Grids come from spreadsheet editors and imported workbooks, so cells are
// not always strings:
//   - numbers keep their literal JSON text ("30", "1.50", "1e3")
//   - booleans become "true" / "false"
//   - null becomes ""
//
// Nested arrays or objects inside a cell are rejected.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DecodeGrid decodes a JSON array of rows into a grid of strings.
// Anything other than a non-empty array of arrays of scalars is a validation error.
func DecodeGrid(raw json.RawMessage) ([][]string, error) {
	const op = "decode grid"

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, invalid(op, "data must be a non-empty array of rows")
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, invalid(op, "data must be an array of rows")
	}
	if len(rows) == 0 {
		return nil, invalid(op, "data must be a non-empty array of rows")
	}

	grid := make([][]string, len(rows))
	for i, rawRow := range rows {
		// null decodes into a nil slice without error
		if bytes.Equal(bytes.TrimSpace(rawRow), []byte("null")) {
			return nil, invalid(op, "row %d must be an array of cells", i)
		}
		var cells []json.RawMessage
		if err := json.Unmarshal(rawRow, &cells); err != nil {
			return nil, invalid(op, "row %d must be an array of cells", i)
		}
		row := make([]string, len(cells))
		for j, cell := range cells {
			s, ok := cellString(cell)
			if !ok {
				return nil, invalid(op, "row %d, column %d: cell must be a string, number, boolean or null", i, j)
			}
			row[j] = s
		}
		grid[i] = row
	}
	return grid, nil
}

// DecodeEntryData decodes a JSON object of header -> value into string values.
func DecodeEntryData(raw json.RawMessage) (map[string]string, error) {
	const op = "decode entry"

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, invalid(op, "data must be an object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, invalid(op, "data must be an object")
	}

	data := make(map[string]string, len(fields))
	for key, value := range fields {
		s, ok := cellString(value)
		if !ok {
			return nil, invalid(op, "field %q must be a string, number, boolean or null", key)
		}
		data[key] = s
	}
	return data, nil
}

// cellString converts one JSON scalar to its cell text.
// Returns false for arrays and objects.
func cellString(raw json.RawMessage) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}

	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// UnmarshalJSON accepts options either as a list or as the comma-separated
// string the design form produces.
func (fs *FieldSetting) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type     FieldType       `json:"type"`
		Required bool            `json:"required"`
		Options  json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	fs.Type = raw.Type
	fs.Required = raw.Required
	fs.Options = nil

	opts := bytes.TrimSpace(raw.Options)
	switch {
	case len(opts) == 0 || bytes.Equal(opts, []byte("null")):
	case opts[0] == '"':
		var s string
		if err := json.Unmarshal(opts, &s); err != nil {
			return err
		}
		fs.Options = SplitOptions(s)
	default:
		if err := json.Unmarshal(opts, &fs.Options); err != nil {
			return fmt.Errorf("options must be a list of strings or a comma-separated string: %w", err)
		}
	}
	return nil
}
