package identity

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lineSplit = regexp.MustCompile(`[\r\n|]+`)

// GuessName obtiene un nombre "decente" desde el raw del documento.
// Nunca falla: si no encuentra nada devuelve "".
func GuessName(raw string) string {
	return guessName(raw, queryValues(raw))
}

func guessName(raw string, q url.Values) string {
	// 1) querystring
	if nom, ok := lookup(q, "NOMBRES"); ok {
		if ape, ok := lookup(q, "APELLIDOS"); ok {
			return TitleName(nom + " " + ape)
		}
	}
	for _, key := range []string{"NOMBRE", "NAME", "FULLNAME"} {
		if v, ok := lookup(q, key); ok {
			return TitleName(v)
		}
	}

	// 2) línea más larga "con pinta de nombre"
	best := ""
	for _, ln := range lineSplit.Split(raw, -1) {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if cand, ok := nameLike(ln); ok && len([]rune(cand)) > len([]rune(best)) {
			best = cand
		}
	}
	return TitleName(best)
}

// nameLike filtra ruido de código de barras: al menos 4 letras,
// dos palabras o más y como máximo 2 dígitos en la línea original.
func nameLike(line string) (string, bool) {
	digits := 0
	letters := 0
	stripped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r):
			digits++
			return ' '
		case unicode.IsLetter(r):
			letters++
			return r
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, line)

	words := strings.Fields(stripped)
	if letters < 4 || len(words) < 2 || digits > 2 {
		return "", false
	}
	return strings.Join(words, " "), true
}

// TitleName normaliza espacios y deja el nombre en formato título.
func TitleName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// un Caser guarda estado, no se comparte entre goroutines
	return cases.Title(language.Spanish).String(s)
}

// SplitName divide un nombre completo en (nombres, apellidos) de forma básica:
// la última palabra es el apellido.
func SplitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
