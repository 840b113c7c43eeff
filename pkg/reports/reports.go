// Package reports renders finding and CVE tables to the terminal and
// accumulates them into JSON and HTML reports.
package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/aquasecurity/table"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

// ReportContext carries the per-run output settings through every
// render call.
type ReportContext struct {
	Out     io.Writer
	NoColor bool
	Clock   clock.PassiveClock
	Logger  *zap.SugaredLogger

	// Accumulator receives every rendered table when JSON export is on.
	Accumulator *Accumulator

	sections []*Table
}

// NewReportContext returns a context writing to out with a real clock.
func NewReportContext(out io.Writer, logger *zap.SugaredLogger) *ReportContext {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ReportContext{
		Out:    out,
		Clock:  clock.RealClock{},
		Logger: logger,
	}
}

// Render prints t below its section banner, persists it when JSON export
// is enabled and keeps it for the end-of-run HTML report.
func (rc *ReportContext) Render(t *Table) error {
	roof := "+" + strings.Repeat("-", max(len(t.Header)-2, 0)) + "+"
	fmt.Fprintln(rc.Out, roof)
	fmt.Fprintln(rc.Out, t.Header)

	tw := table.New(rc.Out)
	tw.SetHeaders(t.Columns...)
	alignments := make([]table.Alignment, len(t.Columns))
	for i := range alignments {
		alignments[i] = table.AlignLeft
	}
	tw.SetAlignment(alignments...)
	tw.SetHeaderAlignment(alignments...)
	tw.SetDividers(table.ASCIIDividers)
	tw.SetRowLines(t.RowLines)
	if rc.NoColor {
		tw.SetHeaderStyle(table.StyleNormal)
		tw.SetLineStyle(table.StyleNormal)
	}
	for _, row := range t.Rows {
		tw.AddRow(row.styledCells(rc.NoColor)...)
	}
	tw.Render()
	fmt.Fprintln(rc.Out)

	rc.sections = append(rc.sections, t)
	rc.Logger.Debugw("rendered section", "section", t.SectionKey(), "rows", len(t.Rows))

	if rc.Accumulator == nil {
		return nil
	}
	if err := rc.Accumulator.Persist(t); err != nil {
		return fmt.Errorf("export %q: %w", t.SectionKey(), err)
	}
	return nil
}

// Sections returns the tables rendered so far, in call order.
func (rc *ReportContext) Sections() []*Table {
	return rc.sections
}
