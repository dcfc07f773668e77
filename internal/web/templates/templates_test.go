package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/sheetforms/internal/core"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestFormPage_EscapesUserText(t *testing.T) {
	out := renderString(t, FormPage(FormParams{
		Name:    `<script>x</script>`,
		Headers: []string{`"quoted"`},
		Fields:  core.FieldSettings{},
		Values:  map[string]string{`"quoted"`: `a"><b>`},
	}))

	if strings.Contains(out, "<script>x</script>") {
		t.Error("sheet name rendered unescaped")
	}
	if strings.Contains(out, `a"><b>`) {
		t.Error("value rendered unescaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("expected escaped name in %q", out)
	}
}

func TestFormPage_InputTypes(t *testing.T) {
	out := renderString(t, FormPage(FormParams{
		Name:    "S",
		Headers: []string{"Age", "Notes", "Dept", "When", "Name"},
		Fields: core.FieldSettings{
			"Age":   {Type: core.FieldNumber},
			"Notes": {Type: core.FieldTextarea},
			"Dept":  {Type: core.FieldDropdown, Options: []string{"HR", "IT"}, Required: true},
			"When":  {Type: core.FieldDate},
		},
	}))

	tests := []string{
		`<input type="number" id="f_0" name="f_0" value="">`,
		`<textarea rows="3" id="f_1" name="f_1">`,
		`<select id="f_2" name="f_2" required>`,
		`<option value="IT">IT</option>`,
		`<input type="date" id="f_3" name="f_3" value="">`,
		`<input type="text" id="f_4" name="f_4" value="">`,
		`No entries yet.`,
	}
	for _, want := range tests {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestDesignPage_PreselectsSettings(t *testing.T) {
	out := renderString(t, DesignPage(DesignParams{
		Name:    "S",
		Version: 7,
		Headers: []string{"Dept"},
		Fields:  core.FieldSettings{"Dept": {Type: core.FieldDropdown, Options: []string{"HR", "IT"}, Required: true}},
	}))

	for _, want := range []string{
		`name="version" value="7"`,
		`<option value="dropdown" selected>`,
		`name="options_0" value="HR,IT"`,
		`name="required_0" checked`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestIndex(t *testing.T) {
	out := renderString(t, Index(nil))
	if !strings.Contains(out, "No sheets saved yet") {
		t.Error("empty index should explain how to start")
	}

	out = renderString(t, Index([]core.SheetSummary{{Name: "a/b c", Headers: []string{"X"}, Version: 1}}))
	if !strings.Contains(out, `href="/form/a%2Fb%20c"`) {
		t.Errorf("link not path-escaped: %q", out)
	}
	if !strings.Contains(out, "name=a%2Fb+c") {
		t.Errorf("export link not query-escaped: %q", out)
	}
}

func TestErrorPage(t *testing.T) {
	out := renderString(t, ErrorPage("Sheet not found", "Save it first", "SHT003"))
	for _, want := range []string{"Sheet not found", "Save it first", "(Code: SHT003)", "<html"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormPage_ErrorInsideLayout(t *testing.T) {
	out := renderString(t, FormPage(FormParams{
		Name:    "S",
		Headers: []string{"A"},
		Values:  map[string]string{"A": "x"},
		Entries: []core.FormEntry{{Data: map[string]string{"A": "older"}}},
		Error:   &core.UserMessage{Message: "Missing required fields: A", Code: "SHT004"},
	}))

	if n := strings.Count(out, "<html"); n != 1 {
		t.Errorf("layout rendered %d times", n)
	}
	body := out[strings.Index(out, "<main>"):strings.Index(out, "</main>")]
	for _, want := range []string{`role="alert"`, "(Code: SHT004)", `value="x"`, "<td>older</td>"} {
		if !strings.Contains(body, want) {
			t.Errorf("main content missing %q", want)
		}
	}
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := Index(nil).Render(ctx, &buf); err == nil {
		t.Error("expected error for canceled context")
	}
}
