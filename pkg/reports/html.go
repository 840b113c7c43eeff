package reports

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/index.html
var templatesFS embed.FS

var reportTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"pct":   percentOf,
	"lower": strings.ToLower,
}).ParseFS(templatesFS, "templates/index.html"))

func percentOf(part, total int) int {
	if total <= 0 {
		return 0
	}
	return part * 100 / total
}

var levels = []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"}

// levelOf reads the severity or priority from the first cell of a row.
// Anything unrecognised counts as INFO.
func levelOf(row Row) string {
	if len(row.Cells) == 0 {
		return "INFO"
	}
	l := strings.ToUpper(strings.TrimSpace(StripANSI(row.Cells[0])))
	for _, known := range levels {
		if l == known {
			return l
		}
	}
	return "INFO"
}

func badgeClass(level string) string {
	switch level {
	case "CRITICAL":
		return "badge critical"
	case "HIGH":
		return "badge high"
	case "MEDIUM":
		return "badge medium"
	case "LOW":
		return "badge low"
	default:
		return "badge info"
	}
}

// BuildReportView summarizes the rendered tables for the HTML template.
func BuildReportView(title string, tables []*Table, generatedAt time.Time) ReportView {
	counts := make(map[string]int, len(levels))
	for _, l := range levels {
		counts[l] = 0
	}

	view := ReportView{
		Title:       title,
		GeneratedAt: generatedAt.Format(time.RFC1123),
		Counts:      counts,
	}
	for _, t := range tables {
		sv := SectionView{Title: t.SectionKey(), Columns: t.Columns}
		for _, row := range t.Rows {
			level := levelOf(row)
			counts[level]++
			view.Total++
			sv.Rows = append(sv.Rows, RowView{Level: level, BadgeCls: badgeClass(level), Cells: row.Cells})
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

// GenerateHTMLReport renders view and replaces outputPath with the result.
func GenerateHTMLReport(view ReportView, outputPath string) error {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return writeFileAtomic(outputPath, buf.Bytes())
}
