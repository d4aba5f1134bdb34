package router

import (
	"net/http"
	"time"

	_ "visitasegura/docs"

	mem "visitasegura/internal/adapters/storage/memory"
	pg "visitasegura/internal/adapters/storage/postgres"
	"visitasegura/internal/domain/operators"
	"visitasegura/internal/domain/persons"
	"visitasegura/internal/domain/places"
	"visitasegura/internal/domain/visits"
	"visitasegura/internal/middleware"
	"visitasegura/internal/platform/logger"
	"visitasegura/internal/platform/metrics"
	"visitasegura/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *pg.DB

	Logger  logger.Logger
	Metrics *metrics.Metrics

	Location          *time.Location
	DefaultFirstPlace bool
	CORSOrigins       []string

	// Solo aplica al modo in-memory.
	SeedDevData bool

	RequestTimeout time.Duration
}

type repos struct {
	persons   persons.Repository
	places    places.Repository
	operators operators.Directory
	visits    visits.Repository
}

func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.TraceID)
	r.Use(middleware.AccessLog(opts.Logger))
	r.Use(middleware.Recover(opts.Logger))
	r.Use(chimw.Timeout(opts.RequestTimeout))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", opts.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	rp := newRepos(opts)

	// Services por módulo
	personsSvc := persons.NewService(rp.persons)
	placesSvc := places.NewService(rp.places)

	ledgerOpts := []visits.Option{
		visits.WithLogger(opts.Logger),
		visits.WithMetrics(opts.Metrics),
		visits.WithDefaultFirstPlace(opts.DefaultFirstPlace),
	}
	if opts.Location != nil {
		ledgerOpts = append(ledgerOpts, visits.WithLocation(opts.Location))
	}
	ledger := visits.NewLedger(rp.visits, rp.places, rp.operators, ledgerOpts...)

	// Rutas por módulo, todas detrás de un operador válido
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireOperator(rp.operators))

		places.RegisterRoutes(g, placesSvc)
		visits.RegisterRoutes(g, ledger, personsSvc)
	})

	return r
}

func newRepos(opts Options) repos {
	if opts.DB != nil {
		return repos{
			persons:   pg.NewPersonsRepo(opts.DB),
			places:    pg.NewPlacesRepo(opts.DB),
			operators: pg.NewOperatorsRepo(opts.DB),
			visits:    pg.NewVisitsRepo(opts.DB),
		}
	}

	db := mem.NewDB()
	if opts.SeedDevData {
		mem.SeedDev(db)
	}
	return repos{
		persons:   mem.NewPersonRepo(db),
		places:    mem.NewPlaceRepo(db),
		operators: mem.NewOperatorDirectory(db),
		visits:    mem.NewVisitRepo(db),
	}
}
