// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/errors"
)

// sanitizeDomainName convierte un nombre de dominio en un nombre de carpeta válido.
// Ejemplo: "example.com" -> "example_com"
func sanitizeDomainName(domain string) string {
	sanitized := strings.ReplaceAll(domain, ".", "_")
	sanitized = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, sanitized)
	return sanitized
}

// reportPath genera la ruta dir/<dominio>/emailscope_<dominio>_<timestamp>.<ext>
// y crea el subdirectorio.
func reportPath(dir, domainName, ext string, at time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if strings.Contains(domainName, "..") || strings.ContainsAny(domainName, `/\`) {
		return "", errors.Wrapf(domain.ErrInvalidOutputPath, "domain %q", domainName)
	}

	fullDir := filepath.Join(dir, sanitizeDomainName(domainName))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", errors.Wrapf(domain.ErrInvalidOutputPath, "create %s: %v", fullDir, err)
	}

	filename := fmt.Sprintf("emailscope_%s_%s.%s", domainName, at.Format("20060102_150405"), ext)
	return filepath.Join(fullDir, filename), nil
}

// Summary resume una ejecución para la cabecera de los ficheros exportados.
type Summary struct {
	RunID           string         `json:"run_id"`
	Domain          string         `json:"domain"`
	StartedAt       time.Time      `json:"started_at"`
	EndedAt         time.Time      `json:"ended_at,omitempty"`
	DurationMS      int64          `json:"duration_ms"`
	Cancelled       bool           `json:"cancelled"`
	PagesFetched    int            `json:"pages_fetched"`
	PagesSkipped    int            `json:"pages_skipped"`
	PagesDisallowed int            `json:"pages_disallowed"`
	Candidates      int            `json:"candidates"`
	Results         int            `json:"results"`
	ByStatus        map[string]int `json:"by_status"`
}

// BuildSummary construye el resumen desde un snapshot.
func BuildSummary(s domain.ReportSnapshot) Summary {
	byStatus := make(map[string]int, len(domain.AllStatuses))
	for _, st := range domain.AllStatuses {
		byStatus[st.String()] = s.Counts[st]
	}

	return Summary{
		RunID:           s.ID,
		Domain:          s.Domain,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		DurationMS:      s.Duration().Milliseconds(),
		Cancelled:       s.Cancelled,
		PagesFetched:    s.PagesFetched,
		PagesSkipped:    s.PagesSkipped,
		PagesDisallowed: s.PagesDisallowed,
		Candidates:      s.CandidateCount,
		Results:         len(s.Results),
		ByStatus:        byStatus,
	}
}

// Document es el contenido del fichero JSON: resumen, filas planas y el
// detalle de cada verificación.
type Document struct {
	Summary Summary                     `json:"summary"`
	Records []domain.Record             `json:"records"`
	Results []domain.VerificationResult `json:"results"`
}

// JSONExporter escribe el reporte como un fichero JSON por ejecución.
type JSONExporter struct {
	dir    string
	pretty bool

	// LastPath es la ruta del último fichero escrito.
	LastPath string
}

var _ ports.WriterExporter = (*JSONExporter)(nil)

// NewJSONExporter crea el exporter. dir vacío = directorio actual.
func NewJSONExporter(dir string) *JSONExporter {
	return &JSONExporter{dir: dir, pretty: true}
}

// Name implementa ports.Exporter.
func (e *JSONExporter) Name() string { return "json" }

// Export implementa ports.Exporter.
func (e *JSONExporter) Export(report domain.ReportSnapshot) error {
	path, err := reportPath(e.dir, report.Domain, "json", time.Now())
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(domain.ErrExportFailed, "create %s: %v", path, err)
	}
	defer f.Close()

	if err := e.ExportToWriter(report, f); err != nil {
		return err
	}
	e.LastPath = path
	return nil
}

// ExportToWriter implementa ports.WriterExporter.
func (e *JSONExporter) ExportToWriter(report domain.ReportSnapshot, w io.Writer) error {
	doc := Document{
		Summary: BuildSummary(report),
		Records: report.Records(),
		Results: report.Results,
	}
	if doc.Results == nil {
		doc.Results = []domain.VerificationResult{}
	}

	enc := json.NewEncoder(w)
	if e.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return errors.Wrapf(domain.ErrExportFailed, "encode json: %v", err)
	}
	return nil
}

// OutputJSONStdout escribe solo las filas planas en stdout.
func OutputJSONStdout(report domain.ReportSnapshot, pretty bool) error {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report.Records())
}
