package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetforms/internal/core"
)

func TestReplaceSheet_CreatesThenReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()

	res, err := s.ReplaceSheet(ctx, core.ReplaceParams{
		Name:    "staff",
		Headers: []string{"Name", "Age"},
		Rows:    []map[string]string{{"Name": "Alice", "Age": "30"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 1, res.Inserted)
	assert.Zero(t, res.Replaced)
	assert.EqualValues(t, 1, res.Sheet.Version)

	_, err = s.InsertEntry(ctx, "staff", map[string]string{"Name": "Bob"})
	require.NoError(t, err)

	res, err = s.ReplaceSheet(ctx, core.ReplaceParams{
		Name:    "staff",
		Headers: []string{"Name"},
		Rows:    []map[string]string{{"Name": "Carol"}},
	})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.EqualValues(t, 2, res.Replaced)
	assert.EqualValues(t, 2, res.Sheet.Version)

	entries, err := s.Entries(ctx, "staff")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Carol", entries[0].Data["Name"])
}

func TestReplaceSheet_PrunesFields(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"A", "B"}})
	require.NoError(t, err)
	_, err = s.UpdateFields(ctx, "s", core.FieldSettings{
		"A": {Type: core.FieldNumber},
		"B": {Type: core.FieldDate, Required: true},
	}, 0)
	require.NoError(t, err)

	_, err = s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"A", "C"}})
	require.NoError(t, err)

	sh, err := s.FindSheet(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, core.FieldSettings{"A": {Type: core.FieldNumber}}, sh.Fields)
}

func TestReplaceSheet_VersionCheck(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"A"}, ExpectedVersion: 1})
	assert.ErrorIs(t, err, core.ErrVersionConflict)

	_, err = s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"A"}})
	require.NoError(t, err)

	_, err = s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"A"}, ExpectedVersion: 1})
	require.NoError(t, err)

	_, err = s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"A"}, ExpectedVersion: 1})
	assert.ErrorIs(t, err, core.ErrVersionConflict)
}

func TestUpdateFields(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.UpdateFields(ctx, "missing", core.FieldSettings{}, 0)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"A"}})
	require.NoError(t, err)

	_, err = s.UpdateFields(ctx, "s", core.FieldSettings{}, 7)
	assert.ErrorIs(t, err, core.ErrVersionConflict)

	sh, err := s.UpdateFields(ctx, "s", core.FieldSettings{"A": {Type: core.FieldTextarea}}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sh.Version)
	assert.Equal(t, core.FieldTextarea, sh.Fields["A"].Type)
}

func TestRecentEntries_NewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, v := range []string{"1", "2", "3"} {
		_, err := s.InsertEntry(ctx, "s", map[string]string{"n": v})
		require.NoError(t, err)
	}
	_, err := s.InsertEntry(ctx, "other", map[string]string{"n": "x"})
	require.NoError(t, err)

	got, err := s.RecentEntries(ctx, "s", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].Data["n"])
	assert.Equal(t, "2", got[1].Data["n"])

	all, err := s.Entries(ctx, "s")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "1", all[0].Data["n"])

	none, err := s.RecentEntries(ctx, "unknown", 2)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	data := map[string]string{"A": "1"}
	_, err := s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"A"}, Rows: []map[string]string{data}})
	require.NoError(t, err)
	data["A"] = "changed"

	sh, err := s.FindSheet(ctx, "s")
	require.NoError(t, err)
	sh.Headers[0] = "changed"

	again, err := s.FindSheet(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, again.Headers)

	entries, err := s.Entries(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "1", entries[0].Data["A"])
}

func TestListSheets_SortedByName(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"b", "a", "c"} {
		_, err := s.ReplaceSheet(ctx, core.ReplaceParams{Name: name, Headers: []string{"x"}})
		require.NoError(t, err)
	}

	got, err := s.ListSheets(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[2].Name)
}

func TestEmptyHeadersStayNonNil(t *testing.T) {
	ctx := context.Background()
	s := New()

	res, err := s.ReplaceSheet(ctx, core.ReplaceParams{Name: "blank", Headers: []string{}})
	require.NoError(t, err)
	assert.NotNil(t, res.Sheet.Headers)

	sh, err := s.FindSheet(ctx, "blank")
	require.NoError(t, err)
	assert.Equal(t, []string{}, sh.Headers)

	list, err := s.ListSheets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{}, list[0].Headers)
}

func TestConcurrentReplace_NoInterleaving(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for _, v := range []string{"x", "y"} {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			rows := make([]map[string]string, 50)
			for i := range rows {
				rows[i] = map[string]string{"v": v}
			}
			_, err := s.ReplaceSheet(ctx, core.ReplaceParams{Name: "s", Headers: []string{"v"}, Rows: rows})
			assert.NoError(t, err)
		}(v)
	}
	wg.Wait()

	entries, err := s.Entries(ctx, "s")
	require.NoError(t, err)
	require.Len(t, entries, 50)
	for _, e := range entries {
		assert.Equal(t, entries[0].Data["v"], e.Data["v"])
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().FindSheet(ctx, "s")
	assert.ErrorIs(t, err, context.Canceled)
}
