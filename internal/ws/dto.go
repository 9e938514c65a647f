package ws

import "encoding/json"

// Envelope é o formato das mensagens nos dois sentidos
// Event: nome do evento (createGame, joinGame, flip, ping / balanceUpdate, gameReady, ...)
// Data: payload do evento, opcional
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outbound é o envelope de saída, com payload ainda não serializado
type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

const (
	eventPing  = "ping"
	eventPong  = "pong"
	eventError = "error"
)
