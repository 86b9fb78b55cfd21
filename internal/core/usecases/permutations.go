// internal/core/usecases/permutations.go
package usecases

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PermutationRule genera la parte local de una dirección a partir de un
// nombre ya plegado a ASCII ("jose", "nunez").
type PermutationRule struct {
	Name  string
	Build func(first, last string) string
}

// PermutationRules es la tabla de permutaciones, en el orden en que se emiten.
var PermutationRules = []PermutationRule{
	{Name: "first.last", Build: func(f, l string) string { return f + "." + l }},
	{Name: "firstlast", Build: func(f, l string) string { return f + l }},
	{Name: "first", Build: func(f, _ string) string { return f }},
	{Name: "f.last", Build: func(f, l string) string { return f[:1] + "." + l }},
	{Name: "flast", Build: func(f, l string) string { return f[:1] + l }},
}

// RoleLocalParts son los buzones genéricos que se añaden con --role-addresses.
var RoleLocalParts = []string{"info", "contact", "sales", "support", "hello", "office"}

// Person es un nombre detectado en el texto de una página.
type Person struct {
	First   string
	Last    string
	PageURL string
}

// FullName retorna "First Last" tal como apareció.
func (p Person) FullName() string {
	return p.First + " " + p.Last
}

// Permutations aplica PermutationRules al nombre y devuelve las direcciones
// en @domain. Nada si el nombre no deja letras tras el plegado.
func (p Person) Permutations(domainName string) []string {
	first, last := foldName(p.First), foldName(p.Last)
	if first == "" || last == "" {
		return nil
	}

	out := make([]string, 0, len(PermutationRules))
	for _, rule := range PermutationRules {
		out = append(out, rule.Build(first, last)+"@"+domainName)
	}
	return out
}

// foldName pasa a minúsculas ASCII: quita diacríticos ("Núñez" -> "nunez")
// y cualquier carácter que no sea letra o dígito ("O'Brien" -> "obrien").
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
