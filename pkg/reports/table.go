package reports

import (
	"strings"

	"github.com/fatih/color"
)

// Tone classifies how the first column of a row is styled on a terminal.
type Tone int

const (
	ToneDefault Tone = iota
	ToneWarn
	ToneAlert
)

func (t Tone) attributes() []color.Attribute {
	switch t {
	case ToneAlert:
		return []color.Attribute{color.FgRed}
	case ToneWarn:
		return []color.Attribute{color.FgHiYellow}
	default:
		return nil
	}
}

// Row holds the plain cell values of one table line. The tone only
// affects terminal output and never reaches persisted reports.
type Row struct {
	Tone  Tone
	Cells []string
}

// Table is a titled set of rows ready to be printed or persisted.
type Table struct {
	// Header is the section title, e.g. "|Risky Roles|".
	Header  string
	Columns []string
	Rows    []Row
	// RowLines draws a separator between every row.
	RowLines bool
}

// NewTable creates an empty table with the given header and columns.
func NewTable(header string, columns ...string) *Table {
	return &Table{Header: header, Columns: columns}
}

// AddRow appends a row. Missing cells are padded with empty strings.
func (t *Table) AddRow(tone Tone, cells ...string) {
	if len(cells) < len(t.Columns) {
		cells = append(cells, make([]string, len(t.Columns)-len(cells))...)
	}
	t.Rows = append(t.Rows, Row{Tone: tone, Cells: cells})
}

// SectionKey is the header without its wrapping pipe characters.
func (t *Table) SectionKey() string {
	return strings.ReplaceAll(t.Header, "|", "")
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// styledCells returns the row cells with the tone applied to the first
// column. The table itself is left untouched.
func (r Row) styledCells(noColor bool) []string {
	out := make([]string, len(r.Cells))
	copy(out, r.Cells)
	attrs := r.Tone.attributes()
	if noColor || len(attrs) == 0 || len(out) == 0 {
		return out
	}
	c := color.New(attrs...)
	c.EnableColor()
	out[0] = c.Sprint(out[0])
	return out
}
