package identity

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrNoValidID = errors.New("no valid national id found")
)

const (
	minBodyDigits = 6
	maxBodyDigits = 9
)

// RUT es un RUT/RUN chileno ya validado (cuerpo numérico + dígito verificador).
type RUT struct {
	Body int
	DV   string
}

// String devuelve la forma normalizada usada como clave de Persona: 12.345.678-5
func (r RUT) String() string {
	return formatThousands(r.Body) + "-" + r.DV
}

// Compact devuelve el RUT sin puntos: 12345678-5
func (r RUT) Compact() string {
	return strconv.Itoa(r.Body) + "-" + r.DV
}

func (r RUT) IsZero() bool {
	return r.Body == 0 && r.DV == ""
}

// CheckDigit calcula el dígito verificador con el algoritmo iterativo
// s = (s + d*(9 - m%6)) % 11, partiendo en s=1 y recorriendo los dígitos
// de menor a mayor peso. s == 0 => "K", si no s-1.
func CheckDigit(body int) string {
	s := 1
	for m := 0; body > 0; m++ {
		s = (s + body%10*(9-m%6)) % 11
		body /= 10
	}
	if s == 0 {
		return "K"
	}
	return strconv.Itoa(s - 1)
}

// ParseRUT valida un RUT escrito por una persona (ingreso manual).
// Acepta puntos, guion y espacios; el DV puede venir en minúscula.
func ParseRUT(s string) (RUT, error) {
	r, ok := normalizeCandidate(s)
	if !ok {
		return RUT{}, ErrNoValidID
	}
	return r, nil
}

// cleanRUT deja solo dígitos y K (en mayúscula).
func cleanRUT(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range strings.ToUpper(s) {
		if (c >= '0' && c <= '9') || c == 'K' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// normalizeCandidate interpreta el último carácter como DV y el resto como cuerpo.
func normalizeCandidate(s string) (RUT, bool) {
	cleaned := cleanRUT(s)
	if len(cleaned) < minBodyDigits+1 {
		return RUT{}, false
	}
	return validate(cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:])
}

func validate(body, dv string) (RUT, bool) {
	if len(body) < minBodyDigits || len(body) > maxBodyDigits {
		return RUT{}, false
	}
	n, err := strconv.Atoi(body)
	if err != nil || n <= 0 {
		return RUT{}, false
	}
	dv = strings.ToUpper(dv)
	if CheckDigit(n) != dv {
		return RUT{}, false
	}
	return RUT{Body: n, DV: dv}, true
}

func formatThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
