package visits

import (
	"context"
	"errors"
	"time"

	"visitasegura/internal/domain/operators"
	"visitasegura/internal/domain/places"
	"visitasegura/internal/platform/logger"
)

// Metrics recibe las transiciones del ledger. Opcional.
type Metrics interface {
	CheckedIn()
	CheckedOut()
	Rejected(reason string)
}

type nopMetrics struct{}

func (nopMetrics) CheckedIn()      {}
func (nopMetrics) CheckedOut()     {}
func (nopMetrics) Rejected(string) {}

// Ledger es el único que abre y cierra visitas.
// Cada operación lee "tiene visita abierta" y escribe dentro de la misma
// transacción por persona, así is_inside siempre coincide con la visita abierta.
type Ledger struct {
	repo      Repository
	places    places.Repository
	operators operators.Directory

	now     func() time.Time
	loc     *time.Location
	log     logger.Logger
	metrics Metrics

	// si está activo, Toggle sin lugar usa el primer lugar por id
	defaultFirstPlace bool
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func WithLogger(lg logger.Logger) Option {
	return func(l *Ledger) {
		if lg != nil {
			l.log = lg
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(l *Ledger) {
		if m != nil {
			l.metrics = m
		}
	}
}

func WithDefaultFirstPlace(on bool) Option {
	return func(l *Ledger) { l.defaultFirstPlace = on }
}

func NewLedger(repo Repository, placeRepo places.Repository, dir operators.Directory, opts ...Option) *Ledger {
	l := &Ledger{
		repo:      repo,
		places:    placeRepo,
		operators: dir,
		now:       time.Now,
		loc:       time.Local,
		log:       logger.Nop(),
		metrics:   nopMetrics{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(map[string]any{"module": "visits"})
	return l
}

// Now es la hora actual en la zona configurada.
func (l *Ledger) Now() time.Time { return l.now().In(l.loc) }

func (l *Ledger) Location() *time.Location { return l.loc }

func (l *Ledger) CheckIn(ctx context.Context, in Input) (int64, error) {
	fields := inputFields(in)
	if in.PersonID <= 0 {
		return 0, l.fail("check-in", fields, ErrInvalidInput)
	}
	if err := l.checkOperator(ctx, in.OperatorID); err != nil {
		return 0, l.fail("check-in", fields, err)
	}
	place, err := l.resolvePlace(ctx, in.PlaceID)
	if err != nil {
		return 0, l.fail("check-in", fields, err)
	}

	at := l.at(in.At)
	var id int64
	err = l.repo.RunInPersonTx(ctx, in.PersonID, func(tx Tx) error {
		var err error
		id, err = l.checkIn(ctx, tx, in.PersonID, place.ID, in.OperatorID, at)
		return err
	})
	if err != nil {
		return 0, l.fail("check-in", fields, err)
	}

	l.metrics.CheckedIn()
	fields["visit_id"] = id
	fields["place_id"] = place.ID
	l.log.Info("check-in", fields)
	return id, nil
}

// CheckOut cierra la visita abierta de la persona.
func (l *Ledger) CheckOut(ctx context.Context, in Input) (int64, error) {
	fields := inputFields(in)
	if in.PersonID <= 0 {
		return 0, l.fail("check-out", fields, ErrInvalidInput)
	}
	if err := l.checkOperator(ctx, in.OperatorID); err != nil {
		return 0, l.fail("check-out", fields, err)
	}

	at := l.at(in.At)
	var id int64
	err := l.repo.RunInPersonTx(ctx, in.PersonID, func(tx Tx) error {
		v, open, err := tx.OpenVisit(ctx, in.PersonID)
		if err != nil {
			return err
		}
		if !open {
			return ErrNotInside
		}
		id = v.ID
		return l.checkOut(ctx, tx, v, in.OperatorID, at)
	})
	if err != nil {
		return 0, l.fail("check-out", fields, err)
	}

	l.metrics.CheckedOut()
	fields["visit_id"] = id
	l.log.Info("check-out", fields)
	return id, nil
}

// CloseVisit cierra por id de visita. Cerrar una visita ya cerrada no es error:
// devuelve alreadyClosed = true y no escribe nada.
func (l *Ledger) CloseVisit(ctx context.Context, visitID, operatorID int64, at time.Time) (alreadyClosed bool, err error) {
	fields := map[string]any{"visit_id": visitID, "operator_id": operatorID}
	if visitID <= 0 {
		return false, l.fail("close", fields, ErrInvalidInput)
	}
	if err := l.checkOperator(ctx, operatorID); err != nil {
		return false, l.fail("close", fields, err)
	}

	v, err := l.repo.GetByID(ctx, visitID)
	if err != nil {
		return false, l.fail("close", fields, err)
	}
	if !v.Open() {
		return true, nil
	}

	at = l.at(at)
	err = l.repo.RunInPersonTx(ctx, v.PersonID, func(tx Tx) error {
		cur, err := tx.GetVisit(ctx, visitID)
		if err != nil {
			return err
		}
		if !cur.Open() {
			alreadyClosed = true
			return nil
		}
		return l.checkOut(ctx, tx, cur, operatorID, at)
	})
	if err != nil {
		return false, l.fail("close", fields, err)
	}
	if alreadyClosed {
		return true, nil
	}

	l.metrics.CheckedOut()
	fields["person_id"] = v.PersonID
	l.log.Info("check-out", fields)
	return false, nil
}

// Toggle hace salida si hay visita abierta y si no, ingreso.
// El lugar solo se exige cuando termina siendo un ingreso.
func (l *Ledger) Toggle(ctx context.Context, in Input) (int64, Action, error) {
	fields := inputFields(in)
	if in.PersonID <= 0 {
		return 0, "", l.fail("toggle", fields, ErrInvalidInput)
	}
	if err := l.checkOperator(ctx, in.OperatorID); err != nil {
		return 0, "", l.fail("toggle", fields, err)
	}

	// el lugar se resuelve antes de abrir la transacción
	place, placeErr := l.resolvePlace(ctx, in.PlaceID)
	if placeErr != nil && !errors.Is(placeErr, ErrUnknownPlace) && !errors.Is(placeErr, ErrPlaceRequired) {
		return 0, "", l.fail("toggle", fields, placeErr)
	}

	at := l.at(in.At)
	var (
		id     int64
		action Action
	)
	err := l.repo.RunInPersonTx(ctx, in.PersonID, func(tx Tx) error {
		v, open, err := tx.OpenVisit(ctx, in.PersonID)
		if err != nil {
			return err
		}
		if open {
			id, action = v.ID, ActionCheckOut
			return l.checkOut(ctx, tx, v, in.OperatorID, at)
		}
		if placeErr != nil {
			return placeErr
		}
		action = ActionCheckIn
		id, err = l.checkIn(ctx, tx, in.PersonID, place.ID, in.OperatorID, at)
		return err
	})
	if err != nil {
		return 0, "", l.fail("toggle", fields, err)
	}

	fields["visit_id"] = id
	if action == ActionCheckIn {
		l.metrics.CheckedIn()
		fields["place_id"] = place.ID
		l.log.Info("check-in", fields)
	} else {
		l.metrics.CheckedOut()
		l.log.Info("check-out", fields)
	}
	return id, action, nil
}

// IsInside lee el estado sin escribir (dry run del escáner).
func (l *Ledger) IsInside(ctx context.Context, personID int64) (bool, error) {
	_, open, err := l.repo.OpenByPerson(ctx, personID)
	return open, err
}

func (l *Ledger) checkIn(ctx context.Context, tx Tx, personID, placeID, operatorID int64, at time.Time) (int64, error) {
	_, open, err := tx.OpenVisit(ctx, personID)
	if err != nil {
		return 0, err
	}
	if open {
		return 0, ErrAlreadyInside
	}

	id, err := tx.Insert(ctx, Visit{
		PersonID:        personID,
		PlaceID:         placeID,
		EntryAt:         at,
		EntryOperatorID: operatorID,
	})
	if err != nil {
		return 0, err
	}
	if err := tx.SetInside(ctx, personID, true); err != nil {
		return 0, err
	}
	return id, nil
}

func (l *Ledger) checkOut(ctx context.Context, tx Tx, v Visit, operatorID int64, at time.Time) error {
	if at.Before(v.EntryAt) {
		return ErrExitBeforeEntry
	}
	if err := tx.Close(ctx, v.ID, at, operatorID); err != nil {
		return err
	}
	return tx.SetInside(ctx, v.PersonID, false)
}

func (l *Ledger) checkOperator(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrUnknownOperator
	}
	op, err := l.operators.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, operators.ErrNotFound) {
			return ErrUnknownOperator
		}
		return err
	}
	if !op.Active {
		return ErrUnknownOperator
	}
	return nil
}

func (l *Ledger) resolvePlace(ctx context.Context, id int64) (places.Place, error) {
	var (
		p   places.Place
		err error
	)
	switch {
	case id > 0:
		p, err = l.places.GetByID(ctx, id)
	case l.defaultFirstPlace:
		p, err = l.places.First(ctx)
	default:
		return places.Place{}, ErrPlaceRequired
	}
	if errors.Is(err, places.ErrNotFound) {
		return places.Place{}, ErrUnknownPlace
	}
	return p, err
}

func (l *Ledger) at(t time.Time) time.Time {
	if t.IsZero() {
		t = l.now()
	}
	return t.UTC()
}

// fail registra el error según su gravedad y lo devuelve tal cual.
func (l *Ledger) fail(op string, fields map[string]any, err error) error {
	fields["error"] = err.Error()
	if reason := rejectReason(err); reason != "" {
		l.metrics.Rejected(reason)
		l.log.Debug(op+" rejected", fields)
		return err
	}
	l.log.Error(op+" failed", fields)
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyInside):
		return "already_inside"
	case errors.Is(err, ErrNotInside):
		return "not_inside"
	case errors.Is(err, ErrUnknownPlace):
		return "unknown_place"
	case errors.Is(err, ErrUnknownOperator):
		return "unknown_operator"
	case errors.Is(err, ErrVisitNotFound), errors.Is(err, ErrPersonNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return ""
	}
}

func inputFields(in Input) map[string]any {
	return map[string]any{
		"person_id":   in.PersonID,
		"operator_id": in.OperatorID,
	}
}
