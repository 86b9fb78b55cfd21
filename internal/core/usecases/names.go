// internal/core/usecases/names.go
package usecases

import (
	"regexp"
	"strings"
	"unicode"
)

// nameToken es una palabra capitalizada: "John", "Núñez", "O'Brien",
// "McDonald", "Smith-Jones".
var nameToken = regexp.MustCompile(`\p{Lu}(?:['’]\p{Lu})?\p{Ll}+(?:\p{Lu}\p{Ll}+)?(?:['’-]\p{Lu}?\p{Ll}+)*`)

// roleKeywords indican que un nombre cercano pertenece a una persona con cargo.
var roleKeywords = toSet(
	"ceo", "cto", "cfo", "coo", "cmo", "cio", "cso", "vp",
	"founder", "cofounder", "president", "chairman", "chairwoman", "chair",
	"director", "manager", "head", "lead", "leader", "engineer", "developer",
	"partner", "officer", "owner", "principal", "executive", "chief",
	"architect", "designer", "consultant", "editor", "analyst", "specialist",
	"coordinator", "secretary", "treasurer", "counsel", "attorney", "advisor",
	"associate", "administrator", "recruiter",
)

// nameStopWords son palabras capitalizadas frecuentes que no son nombres.
var nameStopWords = toSet(
	"about", "contact", "team", "staff", "our", "the", "meet", "us", "we",
	"home", "privacy", "policy", "terms", "services", "service", "company",
	"careers", "jobs", "news", "blog", "read", "more", "learn", "get", "in",
	"touch", "call", "email", "mail", "phone", "fax", "office", "address",
	"senior", "junior", "vice", "board", "sales", "marketing", "support",
	"customer", "customers", "press", "media", "product", "products",
	"operations", "finance", "human", "resources", "business", "development",
	"technology", "technical", "engineering", "software", "general",
	"street", "road", "avenue", "suite", "floor", "building",
	"new", "york", "san", "francisco", "los", "angeles", "london", "united",
	"states", "kingdom", "north", "south", "east", "west", "city",
	"inc", "ltd", "llc", "gmbh", "corp", "group", "global", "world",
	"all", "rights", "reserved", "copyright", "welcome", "hello", "dear",
	"thank", "thanks", "you", "mr", "mrs", "ms", "dr", "prof", "sir",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"and", "or", "of", "for", "with", "at", "by", "to", "from", "this", "that",
	"click", "here", "view", "see", "send", "write", "follow", "join", "apply",
	"leadership", "management", "people", "partners", "clients", "client",
	"example",
)

// findNames devuelve los pares Nombre Apellido de una línea, en orden.
// Dos palabras son un par si solo las separan espacios y ninguna es una
// stop-word o un cargo. Tras aceptar un par se salta la palabra siguiente
// ("John Smith Jones" -> John Smith).
func findNames(line string) [][2]string {
	locs := nameToken.FindAllStringIndex(line, -1)
	if len(locs) < 2 {
		return nil
	}

	var out [][2]string
	for i := 0; i+1 < len(locs); i++ {
		a, b := locs[i], locs[i+1]
		if strings.TrimSpace(line[a[1]:b[0]]) != "" || a[1] == b[0] {
			continue
		}
		if !precededByBoundary(line, a[0]) {
			continue
		}
		first, last := line[a[0]:a[1]], line[b[0]:b[1]]
		if isNameStopWord(first) || isNameStopWord(last) {
			continue
		}
		out = append(out, [2]string{first, last})
		i++
	}
	return out
}

// hasRoleKeyword indica si la línea menciona un cargo ("John Smith, CEO").
func hasRoleKeyword(line string) bool {
	for _, w := range lowerWords(line) {
		if roleKeywords[w] {
			return true
		}
	}
	return false
}

func isNameStopWord(w string) bool {
	w = strings.ToLower(w)
	return nameStopWords[w] || roleKeywords[w]
}

// precededByBoundary evita tomar la cola de una palabra ("McDonald" -> "Donald").
func precededByBoundary(line string, start int) bool {
	if start == 0 {
		return true
	}
	prev := []rune(line[:start])
	return !unicode.IsLetter(prev[len(prev)-1])
}

func lowerWords(line string) []string {
	return strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
