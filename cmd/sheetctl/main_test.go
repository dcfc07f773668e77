package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetforms/internal/codec"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImport_RequiresName(t *testing.T) {
	_, err := execute(t, "import", "x.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestImport_MissingFile(t *testing.T) {
	_, err := execute(t, "import", "--name", "S", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestImport_Workbook(t *testing.T) {
	data, err := codec.New().Encode([][]string{{"A", "B"}, {"1", "2"}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, writeFile(path, data))

	out, err := execute(t, "import", "--name", "S", path)
	require.NoError(t, err)
	assert.Contains(t, out, "saved 1 entries")
}

func TestExport_UnknownSheet(t *testing.T) {
	_, err := execute(t, "export", "--name", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHT003")
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
