// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/errors"
)

// TableExporter imprime el reporte como tabla legible en terminal.
type TableExporter struct {
	out io.Writer
}

var _ ports.WriterExporter = (*TableExporter)(nil)

// NewTableExporter crea el exporter. out nil = stdout.
func NewTableExporter(out io.Writer) *TableExporter {
	if out == nil {
		out = os.Stdout
	}
	return &TableExporter{out: out}
}

// Name implementa ports.Exporter.
func (e *TableExporter) Name() string { return "table" }

// Export implementa ports.Exporter.
func (e *TableExporter) Export(report domain.ReportSnapshot) error {
	return e.ExportToWriter(report, e.out)
}

// ExportToWriter implementa ports.WriterExporter.
func (e *TableExporter) ExportToWriter(report domain.ReportSnapshot, w io.Writer) error {
	summary := BuildSummary(report)

	header := fmt.Sprintf("\n=== EmailScope Results ===\nDomain:     %s\nRun:        %s\nDuration:   %s\nPages:      %d fetched, %d skipped, %d disallowed\nCandidates: %d\n",
		summary.Domain,
		summary.RunID,
		report.Duration().Round(time.Millisecond),
		summary.PagesFetched,
		summary.PagesSkipped,
		summary.PagesDisallowed,
		summary.Candidates,
	)
	if summary.Cancelled {
		header += "Status:     cancelled (partial results)\n"
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return errors.Wrapf(domain.ErrExportFailed, "write table: %v", err)
	}

	records := report.Records()
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No email addresses discovered.")
		return err
	}

	data := pterm.TableData{{"EMAIL", "STATUS", "CONFIDENCE", "SOURCE", "PERSON", "PAGE"}}
	for _, r := range records {
		data = append(data, []string{
			r.Email,
			r.Status,
			strconv.Itoa(r.Confidence),
			r.Source,
			r.PersonName,
			r.PageURL,
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render(); err != nil {
		return errors.Wrapf(domain.ErrExportFailed, "render table: %v", err)
	}

	_, _ = fmt.Fprintln(w, "\nBy status:")
	for _, st := range domain.AllStatuses {
		_, _ = fmt.Fprintf(w, "  - %s: %d\n", st, summary.ByStatus[st.String()])
	}
	_, _ = fmt.Fprintln(w)
	return nil
}
