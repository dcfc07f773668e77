// Package templates holds the templ components for the HTML pages.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/sheetforms/internal/core"
)

// FormParams is the data for FormPage.
type FormParams struct {
	Name    string
	Headers []string
	Fields  core.FieldSettings
	Values  map[string]string // re-filled after a rejected submit
	Entries []core.FormEntry  // newest first
	Error   *core.UserMessage
	Saved   bool
}

// DesignParams is the data for DesignPage.
type DesignParams struct {
	Name    string
	Version int64
	Headers []string
	Fields  core.FieldSettings
	Error   *core.UserMessage
	Saved   bool
}

// SheetURL builds a page link for a sheet name.
func SheetURL(prefix, name string) templ.SafeURL {
	return templ.SafeURL(prefix + url.PathEscape(name))
}

func exportURL(name string) templ.SafeURL {
	return templ.SafeURL("/sheet?export=true&name=" + url.QueryEscape(name))
}

func inputType(ft core.FieldType) string {
	switch ft {
	case core.FieldNumber:
		return "number"
	case core.FieldDate:
		return "date"
	}
	return "text"
}

func indexed(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}
