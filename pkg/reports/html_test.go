package reports

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportView(t *testing.T) {
	roles := NewTable("|Risky Roles|", "Priority", "Name")
	roles.AddRow(ToneAlert, "CRITICAL", "a")
	roles.AddRow(ToneWarn, "HIGH", "b")
	cves := NewTable("|CVEs|", "Severity", "CVE")
	cves.AddRow(ToneWarn, "Medium", "CVE-2020-8555")
	cves.AddRow(ToneDefault, "", "CVE-X")

	view := BuildReportView("Cluster audit", []*Table{roles, cves}, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, 4, view.Total)
	assert.Equal(t, 1, view.Counts["CRITICAL"])
	assert.Equal(t, 1, view.Counts["HIGH"])
	assert.Equal(t, 1, view.Counts["MEDIUM"])
	assert.Equal(t, 1, view.Counts["INFO"])
	assert.Equal(t, 0, view.Counts["LOW"])
	require.Len(t, view.Sections, 2)
	assert.Equal(t, "Risky Roles", view.Sections[0].Title)
	assert.Equal(t, "badge medium", view.Sections[1].Rows[0].BadgeCls)
}

func TestGenerateHTMLReport(t *testing.T) {
	roles := NewTable("|Risky Roles|", "Priority", "Name", "Rules")
	roles.AddRow(ToneAlert, "CRITICAL", "secret-reader", "(get)->(secrets)")
	view := BuildReportView("Cluster audit", []*Table{roles}, time.Now())

	outputPath := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, GenerateHTMLReport(view, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	s := string(content)
	assert.Contains(t, s, "<html>")
	assert.Contains(t, s, "</html>")
	assert.Contains(t, s, "Cluster audit")
	assert.Contains(t, s, "Risky Roles")
	assert.Contains(t, s, "secret-reader")
	assert.Contains(t, s, `class="badge critical"`)
}

func TestGenerateHTMLReportEmpty(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.html")
	require.NoError(t, GenerateHTMLReport(BuildReportView("Empty", nil, time.Now()), outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Empty")
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 0, percentOf(3, 0))
	assert.Equal(t, 33, percentOf(1, 3))
	assert.Equal(t, 100, percentOf(4, 4))
}
