package reports

// ReportView is the data handed to the HTML template.
type ReportView struct {
	Title       string
	GeneratedAt string
	Counts      map[string]int
	Total       int
	Sections    []SectionView
}

// SectionView is one rendered table.
type SectionView struct {
	Title   string
	Columns []string
	Rows    []RowView
}

// RowView is a table row plus the badge class of its first cell.
type RowView struct {
	Level    string
	BadgeCls string
	Cells    []string
}
