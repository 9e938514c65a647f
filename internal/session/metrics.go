package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics agrupa os coletores Prometheus do coordenador
type Metrics struct {
	Created     prometheus.Counter
	Joined      prometheus.Counter
	Resolved    prometheus.Counter
	FeesBurned  prometheus.Counter
	Errors      *prometheus.CounterVec
	Connections prometheus.Gauge
}

// NewMetrics cria e registra os coletores no registerer informado
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Created:     prometheus.NewCounter(prometheus.CounterOpts{Name: "coinflip_matches_created_total", Help: "partidas criadas"}),
		Joined:      prometheus.NewCounter(prometheus.CounterOpts{Name: "coinflip_matches_joined_total", Help: "partidas que receberam oponente"}),
		Resolved:    prometheus.NewCounter(prometheus.CounterOpts{Name: "coinflip_matches_resolved_total", Help: "partidas liquidadas"}),
		FeesBurned:  prometheus.NewCounter(prometheus.CounterOpts{Name: "coinflip_fees_burned_total", Help: "moedas retidas como taxa"}),
		Errors:      prometheus.NewCounterVec(prometheus.CounterOpts{Name: "coinflip_request_errors_total", Help: "requisições rejeitadas por evento e motivo"}, []string{"event", "reason"}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{Name: "coinflip_connections", Help: "conexões abertas"}),
	}
	reg.MustRegister(m.Created, m.Joined, m.Resolved, m.FeesBurned, m.Errors, m.Connections)
	return m
}
