// internal/core/usecases/disposable.go
package usecases

import (
	"regexp"
	"strings"
)

// disposableDomains son servicios de correo temporal conocidos.
var disposableDomains = toSet(
	"10minutemail.com", "tempmail.org", "guerrillamail.com", "mailinator.com",
	"throwaway.email", "temp-mail.org", "getnada.com", "maildrop.cc",
	"yopmail.com", "tempail.com", "sharklasers.com", "guerrillamailblock.com",
)

var disposablePattern = regexp.MustCompile(`(?i)temp.*mail|throw.*away|fake.*mail|test.*mail|no.*reply|do.*not.*reply`)

// isDisposableDomain indica si el dominio es de correo desechable o de no-respuesta.
func isDisposableDomain(d string) bool {
	d = strings.ToLower(strings.TrimSuffix(d, "."))
	return disposableDomains[d] || disposablePattern.MatchString(d)
}
