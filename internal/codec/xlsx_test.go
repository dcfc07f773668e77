package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRoundTrip(t *testing.T) {
	c := New()
	grid := [][]string{
		{"Name", "Age"},
		{"Alice", "30"},
		{"Bob", "41"},
	}

	data, err := c.Encode(grid)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := c.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, grid, got)
}

func TestEncode_WritesSheet1(t *testing.T) {
	data, err := New().Encode([][]string{{"A"}, {"1"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())
	v, err := f.GetCellValue(DefaultSheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestEncode_CustomSheetName(t *testing.T) {
	c := &XLSX{SheetName: "staff"}
	data, err := c.Encode([][]string{{"A"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"staff"}, f.GetSheetList())
}

func TestDecode_FirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"H1", "H2"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"x", 5}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]any{"ignored"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := New().Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"H1", "H2"}, {"x", "5"}}, got)
}

func TestDecode_NotAWorkbook(t *testing.T) {
	_, err := New().Decode(strings.NewReader("name,age\nalice,30\n"))
	assert.Error(t, err)
}
