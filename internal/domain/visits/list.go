package visits

import (
	"context"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultListLimit = 500
	MaxListLimit     = 2000

	// dd-mm-aaaa hh:mm, como se muestra en portería
	DisplayLayout = "02-01-2006 15:04"

	NoName = "(sin nombre)"
)

// ListItem es la fila tal como se muestra; el filtro busca sobre estos campos.
type ListItem struct {
	ID         int64
	Name       string
	NationalID string
	Place      string
	EntryTime  string
	ExitTime   string
	State      State
}

// List devuelve las visitas más recientes primero.
// Con Query, filtra sin distinguir mayúsculas ni tildes sobre todas las
// visitas y recorta a Limit.
func (l *Ledger) List(ctx context.Context, f ListFilter) ([]ListItem, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := Fold(strings.TrimSpace(f.Query))

	rows, err := l.repo.List(ctx, RowFilter{Query: query, Limit: limit, Location: l.loc})
	if err != nil {
		l.log.Error("list failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	out := make([]ListItem, 0, min(len(rows), limit))
	for _, r := range rows {
		item := NewListItem(r, l.loc)
		if !item.Matches(query) {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// NewListItem arma la fila visible con las horas en loc.
func NewListItem(r Row, loc *time.Location) ListItem {
	if loc == nil {
		loc = time.UTC
	}
	it := ListItem{
		ID:         r.VisitID,
		Name:       DisplayName(r.FirstName, r.LastName),
		NationalID: r.RUT,
		Place:      r.Place,
		EntryTime:  r.EntryAt.In(loc).Format(DisplayLayout),
		State:      r.State(),
	}
	if r.ExitAt != nil {
		it.ExitTime = r.ExitAt.In(loc).Format(DisplayLayout)
	}
	return it
}

// Matches compara query (ya plegado con Fold) contra el texto visible.
// Un query vacío calza con todo.
func (it ListItem) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(Fold(it.haystack()), query)
}

func (it ListItem) haystack() string {
	return strings.Join([]string{
		it.Name, it.NationalID, it.Place, it.EntryTime, it.ExitTime, string(it.State),
	}, " ")
}

// DisplayName arma "nombres apellidos" o NoName si no hay nada.
func DisplayName(first, last string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return NoName
	}
	return name
}

// Fold pasa a minúsculas y quita tildes ("Ñuñez" -> "nunez").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
