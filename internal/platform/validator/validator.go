// internal/platform/validator/validator.go
package validator

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var (
	domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)

	// idnaProfile convierte dominios internacionales a punycode.
	idnaProfile = idna.New(idna.MapForLookup(), idna.Transitional(true), idna.StrictDomainName(false))

	validate = newStructValidator()
)

// Domain validators

// IsDomain verifica si un string es un dominio sintácticamente válido.
// Espera la forma ASCII (punycode) del dominio.
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	if !domainRegex.MatchString(domain) {
		return false
	}

	// Verificar que no sea una IP
	return net.ParseIP(domain) == nil
}

// IsSubdomain verifica si subdomain es un subdominio válido de baseDomain.
func IsSubdomain(subdomain, baseDomain string) bool {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))

	if subdomain == baseDomain {
		return false
	}

	return strings.HasSuffix(subdomain, "."+baseDomain)
}

// InDomain indica si host pertenece al dominio raíz (igual, www. o, si se
// permite, cualquier subdominio).
func InDomain(host, root string, subdomains bool) bool {
	host = NormalizeHost(host)
	root = strings.ToLower(strings.TrimSpace(root))
	if host == root || host == "www."+root {
		return true
	}
	return subdomains && IsSubdomain(host, root)
}

// NormalizeDomain normaliza un dominio a su forma canónica.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimSuffix(domain, ".")
	domain = strings.TrimPrefix(domain, "www.")
	return domain
}

// NormalizeHost pasa a minúsculas y elimina puerto y punto final.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}

// CanonicalDomain valida y normaliza el dominio objetivo de una ejecución.
// Acepta entradas tipo "https://www.Example.com/contact" o IDN ("bücher.de")
// y devuelve la forma ASCII sin www. Rechaza IPs, etiquetas sueltas y
// sufijos públicos sin dominio registrable ("co.uk").
func CanonicalDomain(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty domain")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("invalid domain %q", raw)
		}
		s = u.Host
	} else if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	s = NormalizeDomain(NormalizeHost(s))

	ascii, err := idnaProfile.ToASCII(s)
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", raw, err)
	}
	if !IsDomain(ascii) || !strings.Contains(ascii, ".") {
		return "", fmt.Errorf("invalid domain %q", raw)
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(ascii)
	if err != nil || etld1 == "" {
		return "", fmt.Errorf("invalid domain %q: no registrable domain", raw)
	}
	return ascii, nil
}

// RegistrableDomain devuelve el eTLD+1 del host, o el host si no se puede calcular.
func RegistrableDomain(host string) string {
	host = NormalizeHost(host)
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	return host
}

// Email validators

// IsEmail valida el formato de email con checkmail (sin consultas de red).
func IsEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at < 1 || at > 64 {
		return false
	}
	if !strings.Contains(email[at+1:], ".") {
		return false
	}
	return checkmail.ValidateFormat(email) == nil
}

// NormalizeEmail normaliza un email a su forma canónica.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitEmail separa local-part y dominio. ok=false si no hay exactamente una @.
func SplitEmail(email string) (local, domain string, ok bool) {
	if strings.Count(email, "@") != 1 {
		return "", "", false
	}
	at := strings.IndexByte(email, '@')
	local, domain = email[:at], email[at+1:]
	if local == "" || domain == "" {
		return "", "", false
	}
	return local, domain, true
}

// Network validators

// IsIP verifica si un string es una dirección IP válida (v4 o v6).
func IsIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// IsPort valida que un puerto esté en el rango válido [1-65535].
func IsPort(portStr string) bool {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return false
	}
	return port >= 1 && port <= 65535
}

// URL validators

// IsURL verifica si un string es una URL http(s) válida.
func IsURL(urlStr string) bool {
	if len(urlStr) == 0 {
		return false
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// Generic validators

// IsEmpty verifica si un string está vacío o solo contiene espacios.
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// Struct validators

func newStructValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("domainname", func(fl validator.FieldLevel) bool {
		_, err := CanonicalDomain(fl.Field().String())
		return err == nil
	})
	return v
}

// Struct valida un struct con tags `validate:"..."` y devuelve un único
// error legible ("domain is required, maxpages must be at most 500").
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		param := fe.Param()

		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min", "gte":
			msgs = append(msgs, field+" must be at least "+param)
		case "max", "lte":
			msgs = append(msgs, field+" must be at most "+param)
		case "domainname":
			msgs = append(msgs, field+" must be a registrable domain")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}

	return fmt.Errorf("%s", strings.Join(msgs, ", "))
}
