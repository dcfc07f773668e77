package core

// SplitGrid splits a grid into its header row and one entry per data row.
//
// Headers are row 0 verbatim. Each data row is zipped with the headers by
// position: missing cells become "", cells past the last header are dropped.
// When a header repeats, the rightmost column wins for that key.
func SplitGrid(grid [][]string) (headers []string, rows []map[string]string) {
	if len(grid) == 0 {
		return []string{}, nil
	}

	headers = make([]string, len(grid[0]))
	copy(headers, grid[0])

	rows = make([]map[string]string, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// ProjectGrid rebuilds a grid from headers and entries: the header row, then
// one row per entry with entry.Data[header] or "" for each header.
func ProjectGrid(headers []string, entries []FormEntry) [][]string {
	grid := make([][]string, 0, len(entries)+1)

	head := make([]string, len(headers))
	copy(head, headers)
	grid = append(grid, head)

	for _, e := range entries {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = e.Data[h]
		}
		grid = append(grid, row)
	}
	return grid
}

// EmptyGrid is the grid shown for a sheet that has never been saved.
func EmptyGrid() [][]string {
	return [][]string{{""}}
}

// PruneFields drops settings for names that are not headers.
// It never returns nil.
func PruneFields(fields FieldSettings, headers []string) FieldSettings {
	pruned := make(FieldSettings, len(fields))
	for _, h := range headers {
		if fs, ok := fields[h]; ok {
			pruned[h] = fs
		}
	}
	return pruned
}

// ResolveFields returns a setting for every header, using the stored setting
// when there is one and an optional text field otherwise.
func ResolveFields(fields FieldSettings, headers []string) FieldSettings {
	resolved := make(FieldSettings, len(headers))
	for _, h := range headers {
		fs, ok := fields[h]
		if !ok || fs.Type == "" {
			fs.Type = FieldText
		}
		resolved[h] = fs
	}
	return resolved
}
