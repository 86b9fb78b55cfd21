// internal/adapters/output/xlsx.go
package output

import (
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/errors"
)

const (
	sheetResults = "Results"
	sheetSummary = "Summary"
)

var resultColumns = []interface{}{"Email", "Status", "Confidence", "Source", "Person", "Page", "MX", "SMTP", "Catch-all", "Reason"}

// XLSXExporter escribe el reporte como libro Excel: una hoja con las filas
// y otra con el resumen de la ejecución.
type XLSXExporter struct {
	dir string

	// LastPath es la ruta del último fichero escrito.
	LastPath string
}

var _ ports.WriterExporter = (*XLSXExporter)(nil)

// NewXLSXExporter crea el exporter.
func NewXLSXExporter(dir string) *XLSXExporter {
	return &XLSXExporter{dir: dir}
}

// Name implementa ports.Exporter.
func (e *XLSXExporter) Name() string { return "xlsx" }

// Export implementa ports.Exporter.
func (e *XLSXExporter) Export(report domain.ReportSnapshot) error {
	path, err := reportPath(e.dir, report.Domain, "xlsx", time.Now())
	if err != nil {
		return err
	}

	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(domain.ErrExportFailed, "save %s: %v", path, err)
	}
	e.LastPath = path
	return nil
}

// ExportToWriter implementa ports.WriterExporter.
func (e *XLSXExporter) ExportToWriter(report domain.ReportSnapshot, w io.Writer) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return errors.Wrapf(domain.ErrExportFailed, "write xlsx: %v", err)
	}
	return nil
}

func buildWorkbook(report domain.ReportSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	fail := func(err error) (*excelize.File, error) {
		_ = f.Close()
		return nil, errors.Wrapf(domain.ErrExportFailed, "build xlsx: %v", err)
	}

	if err := f.SetSheetName("Sheet1", sheetResults); err != nil {
		return fail(err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fail(err)
	}

	if err := f.SetSheetRow(sheetResults, "A1", &resultColumns); err != nil {
		return fail(err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(resultColumns))
	if err := f.SetCellStyle(sheetResults, "A1", lastCol+"1", bold); err != nil {
		return fail(err)
	}

	for i, res := range report.Results {
		rec := res.Record()
		smtp := ""
		if res.SMTPCode > 0 {
			smtp = strconv.Itoa(res.SMTPCode)
		}
		row := []interface{}{
			rec.Email,
			rec.Status,
			rec.Confidence,
			rec.Source,
			rec.PersonName,
			rec.PageURL,
			res.MXHost,
			smtp,
			res.CatchAll,
			res.Reason,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetResults, cell, &row); err != nil {
			return fail(err)
		}
	}

	if len(report.Results) > 0 {
		ref := "A1:" + lastCol + strconv.Itoa(len(report.Results)+1)
		if err := f.AutoFilter(sheetResults, ref, nil); err != nil {
			return fail(err)
		}
	}
	_ = f.SetColWidth(sheetResults, "A", "A", 36)
	_ = f.SetColWidth(sheetResults, "F", "F", 48)
	_ = f.SetPanes(sheetResults, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fail(err)
	}
	s := BuildSummary(report)
	rows := [][]interface{}{
		{"Run", s.RunID},
		{"Domain", s.Domain},
		{"Started", s.StartedAt.Format(time.RFC3339)},
		{"Duration (ms)", s.DurationMS},
		{"Cancelled", s.Cancelled},
		{"Pages fetched", s.PagesFetched},
		{"Pages skipped", s.PagesSkipped},
		{"Pages disallowed", s.PagesDisallowed},
		{"Candidates", s.Candidates},
		{"Results", s.Results},
	}
	for _, st := range domain.AllStatuses {
		rows = append(rows, []interface{}{"Status " + st.String(), s.ByStatus[st.String()]})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fail(err)
		}
	}
	_ = f.SetCellStyle(sheetSummary, "A1", "A"+strconv.Itoa(len(rows)), bold)
	_ = f.SetColWidth(sheetSummary, "A", "A", 20)
	_ = f.SetColWidth(sheetSummary, "B", "B", 40)

	return f, nil
}
