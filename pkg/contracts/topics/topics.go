package topics

const (
	// Kafka: log de eventos do ciclo de vida das partidas
	MatchEvents = "match_events"

	// Redis Pub/Sub: resultados liquidados, para consumidores externos (placar, espectadores)
	ResultsBroadcast = "coinflip_results_broadcast"
)
