package models

// Table is a provider result: ordered field names and string rows.
// Providers that signal "no data" with a placeholder instead of an error set
// NoData so callers never inspect cell contents for sentinels.
type Table struct {
	Fields []string   `json:"fields"`
	Rows   [][]string `json:"rows"`
	NoData bool       `json:"no_data,omitempty"`
	Source string     `json:"source,omitempty"`
}

// IsEmpty is the single emptiness test used by period fallback: a nil table,
// an explicit no-data marker, or zero rows.
func (t *Table) IsEmpty() bool {
	return t == nil || t.NoData || len(t.Rows) == 0
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// FieldIndex returns the column position of name, or -1.
func (t *Table) FieldIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, f := range t.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row i for field name, or "" when absent.
func (t *Table) Value(i int, name string) string {
	col := t.FieldIndex(name)
	if col < 0 || i < 0 || i >= t.Len() || col >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][col]
}

// Records returns the rows keyed by field name.
func (t *Table) Records() []map[string]string {
	if t == nil {
		return nil
	}
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Fields))
		for i, f := range t.Fields {
			if i < len(row) {
				rec[f] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Filter returns a new table holding the rows keep accepts. The receiver is
// not modified.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	if t == nil {
		return nil
	}
	out := &Table{Fields: append([]string(nil), t.Fields...), Source: t.Source}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out
}

// Head returns a copy limited to the first n rows.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return nil
	}
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	i := 0
	return t.Filter(func([]string) bool {
		i++
		return i <= n
	})
}

// Tail returns a copy limited to the last n rows.
func (t *Table) Tail(n int) *Table {
	if t == nil {
		return nil
	}
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	skip := len(t.Rows) - n
	i := 0
	return t.Filter(func([]string) bool {
		i++
		return i > skip
	})
}
