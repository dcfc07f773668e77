package core

import (
	"reflect"
	"testing"
)

func TestSplitGrid(t *testing.T) {
	tests := []struct {
		name        string
		grid        [][]string
		wantHeaders []string
		wantRows    []map[string]string
	}{
		{
			name:        "header and rows",
			grid:        [][]string{{"Name", "Age"}, {"Alice", "30"}},
			wantHeaders: []string{"Name", "Age"},
			wantRows:    []map[string]string{{"Name": "Alice", "Age": "30"}},
		},
		{
			name:        "header only",
			grid:        [][]string{{"Name"}},
			wantHeaders: []string{"Name"},
			wantRows:    []map[string]string{},
		},
		{
			name:        "short row padded",
			grid:        [][]string{{"A", "B"}, {"1"}},
			wantHeaders: []string{"A", "B"},
			wantRows:    []map[string]string{{"A": "1", "B": ""}},
		},
		{
			name:        "extra cells dropped",
			grid:        [][]string{{"A"}, {"1", "2", "3"}},
			wantHeaders: []string{"A"},
			wantRows:    []map[string]string{{"A": "1"}},
		},
		{
			name:        "repeated header rightmost wins",
			grid:        [][]string{{"A", "A"}, {"left", "right"}},
			wantHeaders: []string{"A", "A"},
			wantRows:    []map[string]string{{"A": "right"}},
		},
		{
			name:        "headers kept verbatim",
			grid:        [][]string{{" Name ", ""}, {"x", "y"}},
			wantHeaders: []string{" Name ", ""},
			wantRows:    []map[string]string{{" Name ": "x", "": "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, rows := SplitGrid(tt.grid)
			if !reflect.DeepEqual(headers, tt.wantHeaders) {
				t.Errorf("headers = %v, want %v", headers, tt.wantHeaders)
			}
			if !reflect.DeepEqual(rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", rows, tt.wantRows)
			}
		})
	}
}

func TestSplitGrid_Empty(t *testing.T) {
	headers, rows := SplitGrid(nil)
	if len(headers) != 0 || headers == nil {
		t.Errorf("headers = %#v, want empty non-nil", headers)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestProjectGrid(t *testing.T) {
	entries := []FormEntry{
		{Data: map[string]string{"Name": "Alice", "Age": "30"}},
		{Data: map[string]string{"Name": "Bob", "Extra": "x"}},
	}
	got := ProjectGrid([]string{"Name", "Age"}, entries)
	want := [][]string{
		{"Name", "Age"},
		{"Alice", "30"},
		{"Bob", ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProjectGrid() = %v, want %v", got, want)
	}
}

func TestSplitThenProject_RoundTrip(t *testing.T) {
	grid := [][]string{{"Name", "Age"}, {"Alice", "30"}, {"Bob", "41"}}
	headers, rows := SplitGrid(grid)

	entries := make([]FormEntry, len(rows))
	for i, r := range rows {
		entries[i] = FormEntry{Data: r}
	}
	if got := ProjectGrid(headers, entries); !reflect.DeepEqual(got, grid) {
		t.Errorf("round trip = %v, want %v", got, grid)
	}
}

func TestPruneFields(t *testing.T) {
	fields := FieldSettings{
		"A": {Type: FieldNumber},
		"B": {Type: FieldDate},
	}
	got := PruneFields(fields, []string{"A", "C"})
	want := FieldSettings{"A": {Type: FieldNumber}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PruneFields() = %v, want %v", got, want)
	}
	if PruneFields(nil, nil) == nil {
		t.Error("PruneFields() must not return nil")
	}
}

func TestResolveFields(t *testing.T) {
	fields := FieldSettings{
		"A": {Type: FieldDropdown, Options: []string{"x"}},
		"B": {Required: true},
		"Z": {Type: FieldDate},
	}
	got := ResolveFields(fields, []string{"A", "B", "C"})
	want := FieldSettings{
		"A": {Type: FieldDropdown, Options: []string{"x"}},
		"B": {Type: FieldText, Required: true},
		"C": {Type: FieldText},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveFields() = %v, want %v", got, want)
	}
}
