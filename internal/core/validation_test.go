package core

import (
	"reflect"
	"testing"
)

func TestCheckRequired(t *testing.T) {
	headers := []string{"Name", "Dept", "Note"}
	fields := FieldSettings{
		"Name": {Type: FieldText, Required: true},
		"Dept": {Type: FieldDropdown, Required: true, Options: []string{"HR"}},
		"Note": {Type: FieldTextarea},
	}

	tests := []struct {
		name string
		data map[string]string
		want []string
	}{
		{"all present", map[string]string{"Name": "Bob", "Dept": "HR"}, nil},
		{"one missing", map[string]string{"Name": "Bob"}, []string{"Dept"}},
		{"blank counts as missing", map[string]string{"Name": "  ", "Dept": "HR"}, []string{"Name"}},
		{"all missing in header order", map[string]string{}, []string{"Name", "Dept"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := CheckRequired(headers, fields, tt.data)
			var got []string
			if len(errs) > 0 {
				got = errs.Fields()
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CheckRequired() fields = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeFields(t *testing.T) {
	headers := []string{"A", "B", "C"}
	in := FieldSettings{
		"A":     {},
		"B":     {Type: FieldDropdown, Options: []string{" x ", "", "y"}},
		"C":     {Type: FieldNumber, Options: []string{"ignored"}},
		"Ghost": {Type: FieldText},
	}

	got, errs := NormalizeFields(in, headers)
	if len(errs) != 0 {
		t.Fatalf("NormalizeFields() errs = %v", errs)
	}
	want := FieldSettings{
		"A": {Type: FieldText},
		"B": {Type: FieldDropdown, Options: []string{"x", "y"}},
		"C": {Type: FieldNumber},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeFields() = %v, want %v", got, want)
	}
}

func TestNormalizeFields_UnknownType(t *testing.T) {
	_, errs := NormalizeFields(FieldSettings{"A": {Type: "color"}}, []string{"A"})
	if len(errs) != 1 || errs[0].Field != "A" {
		t.Fatalf("NormalizeFields() errs = %v, want one error for A", errs)
	}
	if errs.Error() != "A: unknown field type" {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestFieldType_Valid(t *testing.T) {
	for _, ft := range FieldTypes {
		if !ft.Valid() {
			t.Errorf("%q should be valid", ft)
		}
	}
	if FieldType("checkbox").Valid() {
		t.Error("checkbox should not be valid")
	}
}

func TestSplitOptions(t *testing.T) {
	got := SplitOptions("HR, IT,,Finance ")
	want := []string{"HR", "IT", "Finance"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitOptions() = %v, want %v", got, want)
	}
	if SplitOptions("") != nil {
		t.Error("SplitOptions(\"\") should be nil")
	}
}
