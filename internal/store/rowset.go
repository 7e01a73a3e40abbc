package store

import "strings"

// RowSet is one fetched table: column names plus raw driver values.
// A RowSet handed out by a Source is shared and must not be mutated.
type RowSet struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (r *RowSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// ColumnIndex returns the position of column name (case-insensitive), or -1.
func (r *RowSet) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Records returns the rows as column-keyed maps, for raw table views.
func (r *RowSet) Records() []map[string]any {
	out := make([]map[string]any, 0, r.Len())
	if r == nil {
		return out
	}
	for _, row := range r.Rows {
		rec := make(map[string]any, len(r.Columns))
		for i, c := range r.Columns {
			if i < len(row) {
				rec[c] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}
