package identity

import (
	"net/url"
	"regexp"
	"strings"
)

// Source indica qué estrategia encontró el RUT.
type Source string

const (
	SourceQuery Source = "query"
	SourceText  Source = "text"
	SourceWhole Source = "whole"
)

// Identified es el resultado de Resolve.
type Identified struct {
	RUT    RUT
	Name   string // best-effort, puede venir vacío
	Source Source
}

// Cuerpo de 6 a 9 dígitos (con o sin puntos de miles), guion opcional y DV.
var rutInText = regexp.MustCompile(`(\d{1,3}(?:\.\d{3}){1,2}|\d{6,9})-?([0-9Kk])`)

// Resolve extrae un RUT válido (y un nombre, si se puede) desde el texto
// de un QR/PDF417 o de un ingreso escrito. Orden:
//  1. parámetro RUN / RUT del querystring
//  2. búsqueda en el texto completo
//  3. el string completo normalizado
//
// Un candidato con DV incorrecto se descarta y se pasa a la siguiente estrategia.
func Resolve(raw string) (Identified, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identified{}, ErrNoValidID
	}

	q := queryValues(raw)

	for _, key := range []string{"RUN", "RUT"} {
		v, ok := lookup(q, key)
		if !ok {
			continue
		}
		if r, ok := normalizeCandidate(v); ok {
			return Identified{RUT: r, Name: guessName(raw, q), Source: SourceQuery}, nil
		}
	}

	compact := strings.Join(strings.Fields(raw), "")
	for _, m := range rutInText.FindAllStringSubmatch(compact, -1) {
		body := strings.ReplaceAll(m[1], ".", "")
		if r, ok := validate(body, m[2]); ok {
			return Identified{RUT: r, Name: guessName(raw, q), Source: SourceText}, nil
		}
	}

	if r, ok := normalizeCandidate(raw); ok {
		return Identified{RUT: r, Name: guessName(raw, q), Source: SourceWhole}, nil
	}

	return Identified{}, ErrNoValidID
}

// queryValues lee el querystring de forma tolerante: el texto de un PDF417
// suele traer saltos de línea y url.Parse lo rechazaría completo.
func queryValues(raw string) url.Values {
	i := strings.IndexByte(raw, '?')
	if i < 0 {
		return nil
	}
	qs := raw[i+1:]
	if j := strings.IndexByte(qs, '#'); j >= 0 {
		qs = qs[:j]
	}
	// ParseQuery devuelve igual los pares válidos aunque alguno falle.
	vals, _ := url.ParseQuery(strings.TrimSpace(qs))
	if len(vals) == 0 {
		return nil
	}
	return vals
}

func lookup(q url.Values, key string) (string, bool) {
	for k, vs := range q {
		if !strings.EqualFold(k, key) || len(vs) == 0 {
			continue
		}
		v := strings.TrimSpace(vs[0])
		if v == "" {
			continue
		}
		return v, true
	}
	return "", false
}
