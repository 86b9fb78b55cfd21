// internal/adapters/output/xlsx_test.go
package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"emailscope/internal/testutil"
)

func TestXLSXExporter_ExportToWriter(t *testing.T) {
	var buf bytes.Buffer
	err := NewXLSXExporter("").ExportToWriter(sampleSnapshot(false), &buf)
	testutil.AssertNoError(t, err, "export")

	f, err := excelize.OpenReader(&buf)
	testutil.AssertNoError(t, err, "open workbook")
	defer f.Close()

	rows, err := f.GetRows(sheetResults)
	testutil.AssertNoError(t, err, "results sheet")
	testutil.AssertEqual(t, len(rows), 4, "header plus three rows")
	testutil.AssertEqual(t, rows[0][0], "Email", "header")
	testutil.AssertEqual(t, rows[1][0], "jane.doe@example.com", "first email")
	testutil.AssertEqual(t, rows[1][1], "valid", "first status")
	testutil.AssertEqual(t, rows[1][2], "85", "first confidence")
	testutil.AssertEqual(t, rows[3][7], "550", "smtp code")
	testutil.AssertEqual(t, rows[3][9], "recipient rejected", "reason")

	summary, err := f.GetRows(sheetSummary)
	testutil.AssertNoError(t, err, "summary sheet")
	values := map[string]string{}
	for _, row := range summary {
		if len(row) >= 2 {
			values[row[0]] = row[1]
		}
	}
	testutil.AssertEqual(t, values["Domain"], "example.com", "domain")
	testutil.AssertEqual(t, values["Results"], "3", "results")
	testutil.AssertEqual(t, values["Status valid"], "1", "valid count")
}

func TestXLSXExporter_Export(t *testing.T) {
	exporter := NewXLSXExporter(t.TempDir())
	testutil.AssertNoError(t, exporter.Export(sampleSnapshot(false)), "export")
	testutil.AssertTrue(t, strings.HasSuffix(exporter.LastPath, ".xlsx"), "xlsx file: "+exporter.LastPath)

	f, err := excelize.OpenFile(exporter.LastPath)
	testutil.AssertNoError(t, err, "open saved workbook")
	defer f.Close()
	testutil.AssertEqual(t, f.GetSheetList()[0], sheetResults, "results sheet first")
}
