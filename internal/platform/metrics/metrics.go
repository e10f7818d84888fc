package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enquete_api_requests_total",
		Help: "Total de requisicoes da API por operacao e status",
	}, []string{"operacao", "status"})

	votosAceitosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enquete_votos_aceitos_total",
		Help: "Total de votos confirmados na colecao",
	})

	storeSalvarDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "enquete_store_salvar_duration_seconds",
		Help:    "Tempo para persistir a colecao inteira de enquetes",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveRequest(operacao, status string) {
	apiRequestsTotal.WithLabelValues(operacao, status).Inc()
}

func IncVotoAceito() {
	votosAceitosTotal.Inc()
}

func ObserveSalvarDuration(seconds float64) {
	storeSalvarDuration.Observe(seconds)
}
