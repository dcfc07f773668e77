package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "missing parameter keeps its message",
			err:         missingParameter("save grid", "sheet name"),
			wantCode:    "SHT001",
			wantMessage: "sheet name is required",
		},
		{
			name:        "validation keeps its message",
			err:         invalid("decode grid", "data must be an array of rows"),
			wantCode:    "SHT002",
			wantMessage: "data must be an array of rows",
		},
		{
			name:        "not found",
			err:         notFound("export sheet", "sheet not found"),
			wantCode:    "SHT003",
			wantMessage: "sheet not found",
		},
		{
			name:        "store conflict sentinel",
			err:         internal("save grid", "unable to save sheet", ErrVersionConflict),
			wantCode:    "SHT004",
			wantMessage: "sheet was modified since it was loaded",
		},
		{
			name:        "limiter busy",
			err:         internal("export sheet", "unable to export sheet", ErrTooManyTranscodes),
			wantCode:    "SHT005",
			wantMessage: "too many spreadsheet conversions in progress",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "connection reset maps correctly",
			err:         errors.New("read: connection reset by peer"),
			wantCode:    "DB005",
			wantMessage: "Database connection was interrupted",
		},
		{
			name:        "deadlock maps correctly",
			err:         errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"),
			wantCode:    "DB007",
			wantMessage: "Database was busy with conflicting operations",
		},
		{
			name:        "bad zip maps correctly",
			err:         errors.New("zip: not a valid zip file"),
			wantCode:    "FILE002",
			wantMessage: "The uploaded file is not a valid workbook",
		},
		{
			name:        "context canceled",
			err:         fmt.Errorf("query: %w", context.Canceled),
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline exceeded wins over timeout",
			err:         errors.New("context deadline exceeded (timeout)"),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "plain timeout",
			err:         errors.New("i/o timeout"),
			wantCode:    "DB006",
			wantMessage: "Operation timed out",
		},
		{
			name:        "unknown error gets default",
			err:         errors.New("something weird happened"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "internal error keeps operation message",
			err:         internal("save grid", "unable to save sheet", errors.New("boom")),
			wantCode:    "ERR000",
			wantMessage: "unable to save sheet",
		},
		{
			name:        "internal error with known cause uses pattern",
			err:         internal("save grid", "unable to save sheet", errors.New("dial tcp: connection refused")),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_CaseInsensitive(t *testing.T) {
	got := MapError(errors.New("CONNECTION REFUSED"))
	if got.Code != "DB004" {
		t.Errorf("MapError() Code = %q, want DB004", got.Code)
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(notFound("export sheet", "sheet not found"))
	if !strings.Contains(got, "sheet not found") || !strings.Contains(got, "SHT003") {
		t.Errorf("FormatUserError() = %q, want message and code", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"plain", errors.New("x"), KindInternal},
		{"classified", invalid("op", "bad"), KindValidation},
		{"wrapped classified", fmt.Errorf("outer: %w", notFound("op", "gone")), KindNotFound},
		{"not found sentinel", fmt.Errorf("find: %w", ErrNotFound), KindNotFound},
		{"conflict sentinel", ErrVersionConflict, KindConflict},
		{"busy sentinel", ErrTooManyTranscodes, KindUnavailable},
		{"internal keeps sentinel kind", internal("op", "m", ErrVersionConflict), KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Format(t *testing.T) {
	err := &Error{Kind: KindInternal, Op: "save grid", Message: "unable to save sheet", Err: errors.New("boom")}
	if got, want := err.Error(), "save grid: unable to save sheet: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(internal("op", "m", ErrNotFound), ErrNotFound) {
		t.Error("internal() must keep the cause in the chain")
	}
}
