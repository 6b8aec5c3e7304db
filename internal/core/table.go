package core

// table.go implements the read-only data table: filter, single-column sort,
// fixed-size pagination and the export row set. Nothing here mutates the
// records it is given.

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 10

// Empty-state messages.
const (
	MsgNoSchema  = "No schema defined. The table cannot be displayed."
	MsgNoMatches = "No matching records found."
	MsgNoData    = "No data available. Add records via the Data Entry page."
)

// SortDir is a sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// TableState is everything the viewer remembers between requests.
type TableState struct {
	Query string
	Sort  string // Column name; empty means insertion order
	Dir   SortDir
	Page  int
}

// WithQuery sets the search text and returns to the first page.
func (s TableState) WithQuery(q string) TableState {
	s.Query = q
	s.Page = 1
	return s
}

// ToggleSort activates a column. Choosing the active ascending column flips
// it to descending; anything else sorts ascending. The page resets to 1.
func (s TableState) ToggleSort(column string) TableState {
	if s.Sort == column && s.Dir == SortAsc {
		s.Dir = SortDesc
	} else {
		s.Dir = SortAsc
	}
	s.Sort = column
	s.Page = 1
	return s
}

// WithPage moves to another page. Clamping happens when the view is built.
func (s TableState) WithPage(page int) TableState {
	s.Page = page
	return s
}

// TableColumn is one header of the rendered table.
type TableColumn struct {
	Name   string
	Label  string
	Kind   FieldKind
	Sorted SortDir // Empty unless this column is the active sort
}

// TableView is a fully computed page of the table.
type TableView struct {
	NoSchema bool
	Columns  []TableColumn
	Rows     [][]string // Display strings in column order

	State      TableState // Normalized state; Page is clamped
	PageSize   int
	TotalPages int
	Total      int // Rows after filtering
	Start, End int // 1-based range shown, "Showing Start-End of Total"
	HasPrev    bool
	HasNext    bool

	EmptyMessage string // Set when Rows is empty
}

// Table evaluates views over a schema snapshot.
type Table struct {
	schema   Schema
	specs    []KindSpec
	pageSize int
}

// NewTable creates a table over a schema. pageSize <= 0 uses DefaultPageSize.
func NewTable(schema Schema, pageSize int) *Table {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	specs := make([]KindSpec, len(schema))
	for i, def := range schema {
		spec, ok := LookupKind(def.Type)
		if !ok {
			spec, _ = LookupKind(KindText)
		}
		specs[i] = spec
	}
	return &Table{schema: schema, specs: specs, pageSize: pageSize}
}

// Filter keeps records where any value contains q, case-insensitively.
// An empty query keeps everything.
func (t *Table) Filter(records []DataRecord, q string) []DataRecord {
	if q == "" {
		return slices.Clone(records)
	}
	needle := strings.ToLower(q)

	var result []DataRecord
	for _, rec := range records {
		for _, v := range rec {
			if strings.Contains(strings.ToLower(FormatValue(v)), needle) {
				result = append(result, rec)
				break
			}
		}
	}
	return result
}

// Sort orders records by one column. The sort is stable, so equal values
// keep their previous relative order in both directions.
func (t *Table) Sort(records []DataRecord, column string, dir SortDir) []DataRecord {
	sorted := slices.Clone(records)
	if column == "" {
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b DataRecord) int {
		c := compareValues(a[column], b[column])
		if dir == SortDesc {
			return -c
		}
		return c
	})
	return sorted
}

// compareValues compares numerically when both values are numbers and
// lexicographically on their string forms otherwise.
func compareValues(a, b any) int {
	an, aok := numericValue(a)
	bn, bok := numericValue(b)
	if aok && bok {
		return cmp.Compare(an, bn)
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

// normalize drops sorts on columns outside the schema and defaults the direction.
func (t *Table) normalize(s TableState) TableState {
	if s.Sort != "" && !slices.Contains(t.schema.Names(), s.Sort) {
		s.Sort = ""
	}
	if s.Sort == "" {
		s.Dir = ""
	} else if s.Dir != SortDesc {
		s.Dir = SortAsc
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

// Rows returns the full filtered and sorted row set.
func (t *Table) Rows(records []DataRecord, s TableState) []DataRecord {
	s = t.normalize(s)
	return t.Sort(t.Filter(records, s.Query), s.Sort, s.Dir)
}

// View computes the page described by s.
func (t *Table) View(records []DataRecord, s TableState) TableView {
	if len(t.schema) == 0 {
		return TableView{NoSchema: true, EmptyMessage: MsgNoSchema, PageSize: t.pageSize}
	}

	s = t.normalize(s)
	rows := t.Sort(t.Filter(records, s.Query), s.Sort, s.Dir)

	total := len(rows)
	totalPages := (total + t.pageSize - 1) / t.pageSize
	if s.Page > totalPages {
		s.Page = max(totalPages, 1)
	}

	start := (s.Page - 1) * t.pageSize
	end := min(start+t.pageSize, total)

	view := TableView{
		Columns:    t.columns(s),
		State:      s,
		PageSize:   t.pageSize,
		TotalPages: totalPages,
		Total:      total,
		Start:      min(start+1, total),
		End:        end,
		HasPrev:    s.Page > 1,
		HasNext:    s.Page < totalPages,
	}

	for _, rec := range rows[start:end] {
		view.Rows = append(view.Rows, t.displayRow(rec))
	}

	if len(view.Rows) == 0 {
		if len(records) > 0 {
			view.EmptyMessage = MsgNoMatches
		} else {
			view.EmptyMessage = MsgNoData
		}
	}

	return view
}

func (t *Table) columns(s TableState) []TableColumn {
	cols := make([]TableColumn, len(t.schema))
	for i, def := range t.schema {
		cols[i] = TableColumn{Name: def.Name, Label: def.Label, Kind: def.Type}
		if def.Name == s.Sort {
			cols[i].Sorted = s.Dir
		}
	}
	return cols
}

func (t *Table) displayRow(rec DataRecord) []string {
	cells := make([]string, len(t.schema))
	for i, def := range t.schema {
		cells[i] = t.specs[i].Display(rec[def.Name])
	}
	return cells
}

// Export renders the full filtered and sorted row set as CSV. Dates keep
// their stored value rather than the display format.
func (t *Table) Export(records []DataRecord, s TableState) ([]byte, error) {
	if len(t.schema) == 0 {
		return nil, ErrNothingToExport
	}
	rows := t.Rows(records, s)
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}
	return EncodeCSV(t.schema, rows), nil
}
