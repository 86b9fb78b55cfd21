// internal/platform/ui/symbols.go
package ui

import "github.com/pterm/pterm"

// Status es el resultado visible de una fase del pipeline.
type Status int

const (
	StatusRunning Status = iota
	StatusSuccess
	StatusWarning
)

type look struct {
	name   string
	symbol string
	color  pterm.Color
}

var phaseLooks = map[Status]look{
	StatusRunning: {"running", "⣾", pterm.FgCyan},
	StatusSuccess: {"success", "✓", pterm.FgGreen},
	StatusWarning: {"warning", "⚠", pterm.FgYellow},
}

func (s Status) look() look {
	if l, ok := phaseLooks[s]; ok {
		return l
	}
	return look{"unknown", "?", pterm.FgDefault}
}

func (s Status) String() string { return s.look().name }

// Symbol retorna el glifo de la fase en la línea de progreso.
func (s Status) Symbol() string { return s.look().symbol }

func (s Status) Style() *pterm.Style { return pterm.NewStyle(s.look().color) }

// resultColors colorea el desglose final por estado de email, en el orden
// de statusOrder.
var resultColors = map[string]pterm.Color{
	"valid":        pterm.FgGreen,
	"risky":        pterm.FgYellow,
	"unverifiable": pterm.FgGray,
	"invalid":      pterm.FgRed,
}

func resultLabel(status string) string {
	c, ok := resultColors[status]
	if !ok {
		return status
	}
	return pterm.NewStyle(c).Sprint(status)
}

const (
	IconTarget  = "🎯"
	IconPhase   = "🔄"
	IconSuccess = "✓"
	IconTime    = "⏱"
	IconPages   = "📄"
	IconMail    = "✉"
	IconWorkers = "⚙️"

	separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
)
