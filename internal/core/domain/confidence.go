// internal/core/domain/confidence.go
package domain

// Bandas de confianza por defecto (0-100). La tabla de scoring puede
// moverlas; estas son las que usan los exportadores para etiquetar.
const (
	// ConfidenceValidMin a partir de aquí un resultado aceptado es "valid"
	ConfidenceValidMin = 80

	// ConfidenceRiskyMin a partir de aquí es "risky"
	ConfidenceRiskyMin = 40

	// ConfidenceMax cota superior del score
	ConfidenceMax = 100
)

// GetConfidenceLabel returns a human-readable label for a confidence value.
func GetConfidenceLabel(confidence int) string {
	switch {
	case confidence >= ConfidenceValidMin:
		return "high"
	case confidence >= ConfidenceRiskyMin:
		return "medium"
	case confidence > 0:
		return "low"
	default:
		return "none"
	}
}

// ClampConfidence acota un score a [0, 100].
func ClampConfidence(score int) int {
	if score < 0 {
		return 0
	}
	if score > ConfidenceMax {
		return ConfidenceMax
	}
	return score
}
