package visits_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"visitasegura/internal/adapters/storage/memory"
	"visitasegura/internal/domain/identity"
	"visitasegura/internal/domain/operators"
	"visitasegura/internal/domain/persons"
	"visitasegura/internal/domain/places"
	"visitasegura/internal/domain/visits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db     *memory.DB
	ledger *visits.Ledger
	people *persons.Service
	place  places.Place
	op     operators.Operator
}

func newFixture(t *testing.T, opts ...visits.Option) *fixture {
	t.Helper()

	db := memory.NewDB()
	place := db.AddPlace("Acceso Principal")
	op := db.AddOperator(operators.Operator{Name: "Guardia", Role: operators.RoleGuard, Active: true})

	opts = append([]visits.Option{visits.WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{
		db:     db,
		ledger: visits.NewLedger(memory.NewVisitRepo(db), memory.NewPlaceRepo(db), memory.NewOperatorDirectory(db), opts...),
		people: persons.NewService(memory.NewPersonRepo(db)),
		place:  place,
		op:     op,
	}
}

func (f *fixture) person(t *testing.T, rut, name string) persons.Person {
	t.Helper()
	r, err := identity.ParseRUT(rut)
	require.NoError(t, err)
	p, err := f.people.Ensure(context.Background(), r, name)
	require.NoError(t, err)
	return p
}

func (f *fixture) in(p persons.Person) visits.Input {
	return visits.Input{PersonID: p.ID, PlaceID: f.place.ID, OperatorID: f.op.ID}
}

// requireConsistent: is_inside == "tiene visita abierta" para cada persona.
func (f *fixture) requireConsistent(t *testing.T, people ...persons.Person) {
	t.Helper()
	for _, p := range people {
		stored, err := f.people.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		open, err := f.ledger.IsInside(context.Background(), p.ID)
		require.NoError(t, err)
		require.Equal(t, open, stored.Inside, "person %d", p.ID)
	}
}

func TestLedger_CheckInThenDoubleCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.person(t, "12345678-5", "Juan Perez")

	id, err := f.ledger.CheckIn(ctx, f.in(p))
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = f.ledger.CheckIn(ctx, f.in(p))
	require.ErrorIs(t, err, visits.ErrAlreadyInside)
	assert.True(t, visits.IsConflict(err))

	rows, err := f.ledger.List(ctx, visits.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	f.requireConsistent(t, p)
}

func TestLedger_CheckOutRequiresOpenVisit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.person(t, "12345678-5", "Juan Perez")

	_, err := f.ledger.CheckOut(ctx, f.in(p))
	require.ErrorIs(t, err, visits.ErrNotInside)

	inID, err := f.ledger.CheckIn(ctx, f.in(p))
	require.NoError(t, err)

	outID, err := f.ledger.CheckOut(ctx, f.in(p))
	require.NoError(t, err)
	assert.Equal(t, inID, outID)

	_, err = f.ledger.CheckOut(ctx, f.in(p))
	require.ErrorIs(t, err, visits.ErrNotInside)
	f.requireConsistent(t, p)
}

func TestLedger_CloseVisitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.person(t, "12345678-5", "Juan Perez")

	id, err := f.ledger.CheckIn(ctx, f.in(p))
	require.NoError(t, err)

	exit := fixedNow.Add(time.Hour)
	already, err := f.ledger.CloseVisit(ctx, id, f.op.ID, exit)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = f.ledger.CloseVisit(ctx, id, f.op.ID, exit.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, already)

	v, err := memory.NewVisitRepo(f.db).GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, v.ExitAt)
	assert.True(t, v.ExitAt.Equal(exit), "exit time must not move on re-close")
	f.requireConsistent(t, p)

	_, err = f.ledger.CloseVisit(ctx, 9999, f.op.ID, time.Time{})
	assert.ErrorIs(t, err, visits.ErrVisitNotFound)
}

func TestLedger_ConcurrentCheckInHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.person(t, "12345678-5", "Juan Perez")

	const workers = 50
	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		wins     atomic.Int32
		conflict atomic.Int32
		other    atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.ledger.CheckIn(ctx, f.in(p))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, visits.ErrAlreadyInside):
				conflict.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, workers-1, conflict.Load())
	assert.Zero(t, other.Load())

	rows, err := f.ledger.List(ctx, visits.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	f.requireConsistent(t, p)
}

func TestLedger_ConcurrentTogglesStayConsistent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	people := []persons.Person{
		f.person(t, "12345678-5", "Juan Perez"),
		f.person(t, "11111111-1", "Ana Rojas"),
		f.person(t, "7654321-6", "Luis Soto"),
	}

	var wg sync.WaitGroup
	var ins, outs atomic.Int32
	for i := 0; i < 90; i++ {
		p := people[i%len(people)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, action, err := f.ledger.Toggle(ctx, f.in(p))
			if !assert.NoError(t, err) {
				return
			}
			if action == visits.ActionCheckIn {
				ins.Add(1)
			} else {
				outs.Add(1)
			}
		}()
	}
	wg.Wait()

	// 30 toggles por persona: 15 ingresos y 15 salidas
	assert.EqualValues(t, 45, ins.Load())
	assert.EqualValues(t, 45, outs.Load())
	f.requireConsistent(t, people...)
}

func TestLedger_ToggleAlternatesStartingWithCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.person(t, "12345678-5", "Juan Perez")

	for i := 0; i < 6; i++ {
		_, action, err := f.ledger.Toggle(ctx, f.in(p))
		require.NoError(t, err)
		if i%2 == 0 {
			assert.Equal(t, visits.ActionCheckIn, action, "toggle %d", i)
		} else {
			assert.Equal(t, visits.ActionCheckOut, action, "toggle %d", i)
		}
		f.requireConsistent(t, p)
	}
}

func TestLedger_TogglePlace(t *testing.T) {
	ctx := context.Background()

	t.Run("check-in needs a place", func(t *testing.T) {
		f := newFixture(t)
		p := f.person(t, "12345678-5", "Juan Perez")

		in := f.in(p)
		in.PlaceID = 0
		_, _, err := f.ledger.Toggle(ctx, in)
		require.ErrorIs(t, err, visits.ErrPlaceRequired)
		require.ErrorIs(t, err, visits.ErrInvalidInput)

		in.PlaceID = 404
		_, _, err = f.ledger.Toggle(ctx, in)
		require.ErrorIs(t, err, visits.ErrUnknownPlace)
		f.requireConsistent(t, p)
	})

	t.Run("check-out does not need a place", func(t *testing.T) {
		f := newFixture(t)
		p := f.person(t, "12345678-5", "Juan Perez")
		_, err := f.ledger.CheckIn(ctx, f.in(p))
		require.NoError(t, err)

		in := f.in(p)
		in.PlaceID = 0
		_, action, err := f.ledger.Toggle(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, visits.ActionCheckOut, action)
	})

	t.Run("default first place when enabled", func(t *testing.T) {
		f := newFixture(t, visits.WithDefaultFirstPlace(true))
		f.db.AddPlace("Bodega")
		p := f.person(t, "12345678-5", "Juan Perez")

		in := f.in(p)
		in.PlaceID = 0
		_, action, err := f.ledger.Toggle(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, visits.ActionCheckIn, action)

		rows, err := f.ledger.List(ctx, visits.ListFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Acceso Principal", rows[0].Place)
	})
}

func TestLedger_RejectsUnknownOrInactiveOperator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.person(t, "12345678-5", "Juan Perez")
	inactive := f.db.AddOperator(operators.Operator{Name: "Ex", Role: operators.RoleGuard, Active: false})

	for _, opID := range []int64{0, 999, inactive.ID} {
		in := f.in(p)
		in.OperatorID = opID
		_, err := f.ledger.CheckIn(ctx, in)
		assert.ErrorIs(t, err, visits.ErrUnknownOperator, "operator %d", opID)
	}
	f.requireConsistent(t, p)
}

func TestLedger_UnknownPersonAndPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.CheckIn(ctx, visits.Input{PersonID: 77, PlaceID: f.place.ID, OperatorID: f.op.ID})
	assert.ErrorIs(t, err, visits.ErrPersonNotFound)

	p := f.person(t, "12345678-5", "Juan Perez")
	in := f.in(p)
	in.PlaceID = 404
	_, err = f.ledger.CheckIn(ctx, in)
	assert.ErrorIs(t, err, visits.ErrUnknownPlace)
}

func TestLedger_ExitBeforeEntryIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.person(t, "12345678-5", "Juan Perez")

	_, err := f.ledger.CheckIn(ctx, f.in(p))
	require.NoError(t, err)

	in := f.in(p)
	in.At = fixedNow.Add(-time.Minute)
	_, err = f.ledger.CheckOut(ctx, in)
	require.ErrorIs(t, err, visits.ErrExitBeforeEntry)

	inside, err := f.ledger.IsInside(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, inside)
	f.requireConsistent(t, p)
}

func TestLedger_RandomSequencesKeepFlagConsistent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	people := []persons.Person{
		f.person(t, "12345678-5", "Juan Perez"),
		f.person(t, "11111111-1", "Ana Rojas"),
		f.person(t, "6000000-K", "Pedro Diaz"),
	}
	rng := rand.New(rand.NewPCG(7, 11))

	var opened []int64
	for i := 0; i < 300; i++ {
		p := people[rng.IntN(len(people))]
		switch rng.IntN(4) {
		case 0:
			if id, err := f.ledger.CheckIn(ctx, f.in(p)); err == nil {
				opened = append(opened, id)
			} else {
				require.ErrorIs(t, err, visits.ErrAlreadyInside)
			}
		case 1:
			if _, err := f.ledger.CheckOut(ctx, f.in(p)); err != nil {
				require.ErrorIs(t, err, visits.ErrNotInside)
			}
		case 2:
			id, action, err := f.ledger.Toggle(ctx, f.in(p))
			require.NoError(t, err)
			if action == visits.ActionCheckIn {
				opened = append(opened, id)
			}
		default:
			if len(opened) > 0 {
				_, err := f.ledger.CloseVisit(ctx, opened[rng.IntN(len(opened))], f.op.ID, time.Time{})
				require.NoError(t, err)
			}
		}
		f.requireConsistent(t, people...)
	}
}

type countingMetrics struct {
	mu       sync.Mutex
	in, out  int
	rejected map[string]int
}

func (m *countingMetrics) CheckedIn()  { m.mu.Lock(); m.in++; m.mu.Unlock() }
func (m *countingMetrics) CheckedOut() { m.mu.Lock(); m.out++; m.mu.Unlock() }
func (m *countingMetrics) Rejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejected == nil {
		m.rejected = map[string]int{}
	}
	m.rejected[reason]++
}

func TestLedger_ReportsMetrics(t *testing.T) {
	ctx := context.Background()
	m := &countingMetrics{}
	f := newFixture(t, visits.WithMetrics(m))
	p := f.person(t, "12345678-5", "Juan Perez")

	_, _, err := f.ledger.Toggle(ctx, f.in(p))
	require.NoError(t, err)
	_, err = f.ledger.CheckIn(ctx, f.in(p))
	require.Error(t, err)
	_, _, err = f.ledger.Toggle(ctx, f.in(p))
	require.NoError(t, err)

	assert.Equal(t, 1, m.in)
	assert.Equal(t, 1, m.out)
	assert.Equal(t, 1, m.rejected["already_inside"])
}

func TestLedger_ListFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, visits.WithLocation(time.UTC))

	jose := f.person(t, "12345678-5", "José Ñuñez")
	ana := f.person(t, "11111111-1", "Ana Rojas")

	in := f.in(jose)
	in.At = fixedNow.Add(-2 * time.Hour)
	_, err := f.ledger.CheckIn(ctx, in)
	require.NoError(t, err)
	_, err = f.ledger.CheckOut(ctx, f.in(jose))
	require.NoError(t, err)

	in = f.in(ana)
	in.At = fixedNow.Add(-time.Hour)
	_, err = f.ledger.CheckIn(ctx, in)
	require.NoError(t, err)

	all, err := f.ledger.List(ctx, visits.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana Rojas", all[0].Name, "newest entry first")
	assert.Equal(t, visits.StateInside, all[0].State)
	assert.Equal(t, "02-03-2026 11:00", all[0].EntryTime)
	assert.Empty(t, all[0].ExitTime)

	cases := map[string][]string{
		"nunez":       {"José Ñuñez"},
		"JOSE":        {"José Ñuñez"},
		"11.111.111":  {"Ana Rojas"},
		"outside":     {"José Ñuñez"},
		"acceso":      {"Ana Rojas", "José Ñuñez"},
		"02-03-2026":  {"Ana Rojas", "José Ñuñez"},
		"no-such-one": {},
	}
	for q, want := range cases {
		got, err := f.ledger.List(ctx, visits.ListFilter{Query: q})
		require.NoError(t, err)
		names := make([]string, 0, len(got))
		for _, it := range got {
			names = append(names, it.Name)
		}
		assert.Equal(t, want, names, "query %q", q)
	}

	limited, err := f.ledger.List(ctx, visits.ListFilter{Query: "acceso", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLedger_ListSearchCoversOlderVisits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	old := f.person(t, "11111111-1", "Zoila Antigua")
	_, _, err := f.ledger.Toggle(ctx, f.in(old))
	require.NoError(t, err)
	_, _, err = f.ledger.Toggle(ctx, f.in(old))
	require.NoError(t, err)

	// más visitas nuevas que el máximo de un listado
	recent := f.person(t, "12345678-5", "Juan Perez")
	for i := 0; i < visits.MaxListLimit; i++ {
		_, err := f.ledger.CheckIn(ctx, f.in(recent))
		require.NoError(t, err)
		_, err = f.ledger.CheckOut(ctx, f.in(recent))
		require.NoError(t, err)
	}

	got, err := f.ledger.List(ctx, visits.ListFilter{Query: "zoila"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Zoila Antigua", got[0].Name)

	page, err := f.ledger.List(ctx, visits.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, page, visits.DefaultListLimit)
}
