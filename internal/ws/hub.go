package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/coinflip-platform/internal/shared/logger"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
)

// Handler recebe o ciclo de vida e os eventos de cada conexão
type Handler interface {
	Connect(ctx context.Context, identity string)
	Disconnect(ctx context.Context, identity string)
	Handle(ctx context.Context, identity, event string, data json.RawMessage)
}

// client serializa as escritas de uma conexão; o gorilla não aceita writers concorrentes
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia as conexões WebSocket, uma identidade por conexão
// clients: identidade -> conexão
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub cria o Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		clients:  make(map[string]*client),
	}
}

// Emit envia um evento a uma única identidade; identidades desconectadas são ignoradas
func (h *Hub) Emit(identity, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[identity]
	h.mu.RUnlock()
	if !ok {
		h.log.Debug("emit to offline identity", logger.Identity(identity), zap.String("event", event))
		return
	}

	b, err := json.Marshal(outbound{Event: event, Data: payload})
	if err != nil {
		h.log.Error("marshal outbound", zap.String("event", event), zap.Error(err))
		return
	}
	if err := c.write(b); err != nil {
		h.log.Warn("ws write", logger.Identity(identity), zap.String("event", event), zap.Error(err))
	}
}

// Online retorna quantas conexões estão abertas
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler devolve o endpoint HTTP que faz o upgrade e roda o loop de leitura da conexão
func (h *Hub) Handler(next Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxMessageSize)

		ctx := r.Context()
		identity := uuid.NewString()
		c := &client{conn: conn}

		h.mu.Lock()
		h.clients[identity] = c
		h.mu.Unlock()

		next.Connect(ctx, identity)

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg Envelope
			if err := json.Unmarshal(raw, &msg); err != nil || msg.Event == "" {
				h.Emit(identity, eventError, "Invalid message")
				continue
			}
			if msg.Event == eventPing {
				h.Emit(identity, eventPong, nil)
				continue
			}
			next.Handle(ctx, identity, msg.Event, msg.Data)
		}

		// Remove a conexão ao desconectar; saldo e partidas ficam intactos
		h.mu.Lock()
		delete(h.clients, identity)
		h.mu.Unlock()

		next.Disconnect(ctx, identity)
	}
}
