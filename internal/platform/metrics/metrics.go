package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los collectors del servicio en un registry propio
// (así cada router de test tiene el suyo).
type Metrics struct {
	registry *prometheus.Registry

	CheckIns   prometheus.Counter
	CheckOuts  prometheus.Counter
	Rejections *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CheckIns: f.NewCounter(prometheus.CounterOpts{
			Name: "visitasegura_check_ins_total",
			Help: "Total number of visits opened",
		}),
		CheckOuts: f.NewCounter(prometheus.CounterOpts{
			Name: "visitasegura_check_outs_total",
			Help: "Total number of visits closed",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitasegura_ledger_rejections_total",
			Help: "Ledger operations rejected, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) CheckedIn()  { m.CheckIns.Inc() }
func (m *Metrics) CheckedOut() { m.CheckOuts.Inc() }

func (m *Metrics) Rejected(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
