// internal/core/ports/exporter.go
package ports

import (
	"io"

	"emailscope/internal/core/domain"
)

// Exporter es el port para exportar reportes en diferentes formatos.
type Exporter interface {
	// Name retorna el nombre del exporter (ej: "json", "table", "xlsx")
	Name() string

	// Export exporta el snapshot del reporte
	Export(report domain.ReportSnapshot) error
}

// WriterExporter permite exportar a cualquier io.Writer.
type WriterExporter interface {
	Exporter

	// ExportToWriter exporta el reporte a un Writer personalizado
	ExportToWriter(report domain.ReportSnapshot, w io.Writer) error
}
