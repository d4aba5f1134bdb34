package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"visitasegura/internal/domain/visits"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var visitColumns = []string{
	"id_visita", "persona_id", "lugar_id",
	"entrada_at", "salida_at",
	"operador_entrada_id", "operador_salida_id",
}

type visitRow struct {
	ID              int64         `db:"id_visita"`
	PersonID        int64         `db:"persona_id"`
	PlaceID         int64         `db:"lugar_id"`
	EntryAt         time.Time     `db:"entrada_at"`
	ExitAt          sql.NullTime  `db:"salida_at"`
	EntryOperatorID int64         `db:"operador_entrada_id"`
	ExitOperatorID  sql.NullInt64 `db:"operador_salida_id"`
}

func (r visitRow) toDomain() visits.Visit {
	v := visits.Visit{
		ID:              r.ID,
		PersonID:        r.PersonID,
		PlaceID:         r.PlaceID,
		EntryAt:         r.EntryAt,
		EntryOperatorID: r.EntryOperatorID,
	}
	if r.ExitAt.Valid {
		t := r.ExitAt.Time
		v.ExitAt = &t
	}
	if r.ExitOperatorID.Valid {
		id := r.ExitOperatorID.Int64
		v.ExitOperatorID = &id
	}
	return v
}

type listRow struct {
	VisitID   int64        `db:"id_visita"`
	FirstName string       `db:"nombres"`
	LastName  string       `db:"apellidos"`
	RUT       string       `db:"run"`
	Place     string       `db:"nombre_lugar"`
	EntryAt   time.Time    `db:"entrada_at"`
	ExitAt    sql.NullTime `db:"salida_at"`
}

type VisitsRepo struct {
	db *DB
}

func NewVisitsRepo(db *DB) *VisitsRepo {
	return &VisitsRepo{db: db}
}

// RunInPersonTx abre una transacción y bloquea la fila de persona
// (SELECT ... FOR UPDATE). Dos requests de la misma persona se serializan;
// personas distintas no se esperan.
func (r *VisitsRepo) RunInPersonTx(ctx context.Context, personID int64, fn func(tx visits.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := r.db.Builder.
		Select("id_persona").
		From("persona").
		Where(squirrel.Eq{"id_persona": personID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return err
	}

	var locked int64
	if err = tx.GetContext(ctx, &locked, query, args...); err != nil {
		if isNoRows(err) {
			return visits.ErrPersonNotFound
		}
		return err
	}

	if err = fn(&visitTx{tx: tx, builder: r.db.Builder}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *VisitsRepo) GetByID(ctx context.Context, id int64) (visits.Visit, error) {
	return getVisit(ctx, r.db, r.db.Builder, squirrel.Eq{"id_visita": id})
}

func (r *VisitsRepo) OpenByPerson(ctx context.Context, personID int64) (visits.Visit, bool, error) {
	return openVisit(ctx, r.db, r.db.Builder, personID)
}

// listHaystack arma en SQL el mismo texto que muestra el listado
// (nombre, RUT, lugar, entrada, salida, estado) para buscar sobre todas
// las visitas. Args: NoName, zona, zona.
const listHaystack = `lower(unaccent(concat_ws(' ',
	COALESCE(NULLIF(btrim(btrim(p.nombres) || ' ' || btrim(p.apellidos)), ''), ?),
	p.run,
	l.nombre_lugar,
	to_char(v.entrada_at AT TIME ZONE ?, 'DD-MM-YYYY HH24:MI'),
	COALESCE(to_char(v.salida_at AT TIME ZONE ?, 'DD-MM-YYYY HH24:MI'), ''),
	CASE WHEN v.salida_at IS NULL THEN 'Inside' ELSE 'Outside' END
)))`

func (r *VisitsRepo) List(ctx context.Context, f visits.RowFilter) ([]visits.Row, error) {
	b := r.db.Builder.
		Select(
			"v.id_visita", "p.nombres", "p.apellidos", "p.run",
			"l.nombre_lugar", "v.entrada_at", "v.salida_at",
		).
		From("visita v").
		Join("persona p ON p.id_persona = v.persona_id").
		Join("lugar l ON l.id_lugar = v.lugar_id").
		OrderBy("v.entrada_at DESC", "v.id_visita DESC")
	if f.Query != "" {
		tz := zoneName(f.Location)
		b = b.Where(listHaystack+" LIKE ?", visits.NoName, tz, tz, "%"+escapeLike(f.Query)+"%")
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []listRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]visits.Row, 0, len(rows))
	for _, row := range rows {
		vr := visits.Row{
			VisitID:   row.VisitID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			RUT:       row.RUT,
			Place:     row.Place,
			EntryAt:   row.EntryAt,
		}
		if row.ExitAt.Valid {
			t := row.ExitAt.Time
			vr.ExitAt = &t
		}
		out = append(out, vr)
	}
	return out, nil
}

type visitTx struct {
	tx      *sqlx.Tx
	builder squirrel.StatementBuilderType
}

func (t *visitTx) OpenVisit(ctx context.Context, personID int64) (visits.Visit, bool, error) {
	return openVisit(ctx, t.tx, t.builder, personID)
}

func (t *visitTx) GetVisit(ctx context.Context, id int64) (visits.Visit, error) {
	return getVisit(ctx, t.tx, t.builder, squirrel.Eq{"id_visita": id})
}

// Insert traduce la violación del índice parcial de visitas abiertas a ErrAlreadyInside.
func (t *visitTx) Insert(ctx context.Context, v visits.Visit) (int64, error) {
	query, args, err := t.builder.
		Insert("visita").
		Columns("persona_id", "lugar_id", "entrada_at", "operador_entrada_id").
		Values(v.PersonID, v.PlaceID, v.EntryAt, v.EntryOperatorID).
		Suffix("RETURNING id_visita").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := t.tx.GetContext(ctx, &id, query, args...); err != nil {
		if isUniqueViolation(err) {
			return 0, visits.ErrAlreadyInside
		}
		return 0, err
	}
	return id, nil
}

func (t *visitTx) Close(ctx context.Context, id int64, at time.Time, operatorID int64) error {
	query, args, err := t.builder.
		Update("visita").
		Set("salida_at", at).
		Set("operador_salida_id", operatorID).
		Where(squirrel.Eq{"id_visita": id, "salida_at": nil}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isCheckViolation(err) {
			return visits.ErrExitBeforeEntry
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return visits.ErrNotInside
	}
	return nil
}

func (t *visitTx) SetInside(ctx context.Context, personID int64, inside bool) error {
	query, args, err := t.builder.
		Update("persona").
		Set("is_inside", inside).
		Where(squirrel.Eq{"id_persona": personID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return visits.ErrPersonNotFound
	}
	return nil
}

func getVisit(ctx context.Context, q sqlx.QueryerContext, b squirrel.StatementBuilderType, where squirrel.Eq) (visits.Visit, error) {
	query, args, err := b.Select(visitColumns...).From("visita").Where(where).ToSql()
	if err != nil {
		return visits.Visit{}, err
	}

	var row visitRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNoRows(err) {
			return visits.Visit{}, visits.ErrVisitNotFound
		}
		return visits.Visit{}, err
	}
	return row.toDomain(), nil
}

func openVisit(ctx context.Context, q sqlx.QueryerContext, b squirrel.StatementBuilderType, personID int64) (visits.Visit, bool, error) {
	v, err := getVisit(ctx, q, b, squirrel.Eq{"persona_id": personID, "salida_at": nil})
	if errors.Is(err, visits.ErrVisitNotFound) {
		return visits.Visit{}, false, nil
	}
	if err != nil {
		return visits.Visit{}, false, err
	}
	return v, true, nil
}

// zoneName devuelve un nombre IANA que Postgres entienda. time.Local no
// tiene nombre portable; en ese caso se busca en UTC.
func zoneName(loc *time.Location) string {
	if loc == nil || loc.String() == "Local" {
		return "UTC"
	}
	return loc.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
