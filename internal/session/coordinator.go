package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/coinflip-platform/internal/ledger"
	"github.com/radieske/coinflip-platform/internal/match"
	"github.com/radieske/coinflip-platform/internal/publisher"
	"github.com/radieske/coinflip-platform/internal/shared/logger"
	"github.com/radieske/coinflip-platform/pkg/contracts/events"
)

// Emitter entrega um evento a uma única identidade conectada
type Emitter interface {
	Emit(identity, event string, payload any)
}

// Balances é o que o coordenador precisa do ledger
type Balances interface {
	Ensure(identity string) int64
}

// Matches é o que o coordenador precisa do registry
type Matches interface {
	Create(creator string, wager int64) (match.Match, int64, error)
	Join(joiner, matchID string) (match.Match, int64, error)
	Resolve(requester, matchID string) (match.Settlement, error)
}

const defaultPublishTimeout = 500 * time.Millisecond

// Coordinator traduz eventos de uma conexão em operações de ledger/registry
// e devolve os eventos resultantes para o(s) participante(s) certo(s)
type Coordinator struct {
	log      *zap.Logger
	balances Balances
	matches  Matches
	emit     Emitter
	publ     publisher.Publisher
	metrics  *Metrics

	PublishTimeout time.Duration
}

// New instancia o coordenador; publ nil desliga a publicação de eventos
func New(log *zap.Logger, b Balances, m Matches, emit Emitter, publ publisher.Publisher, metrics *Metrics) *Coordinator {
	if publ == nil {
		publ = publisher.Fanout{}
	}
	return &Coordinator{
		log:            log,
		balances:       b,
		matches:        m,
		emit:           emit,
		publ:           publ,
		metrics:        metrics,
		PublishTimeout: defaultPublishTimeout,
	}
}

// Connect garante o saldo inicial e envia o saldo atual só para essa identidade
func (c *Coordinator) Connect(_ context.Context, identity string) {
	c.metrics.Connections.Inc()
	bal := c.balances.Ensure(identity)
	c.log.Info("player connected", logger.Identity(identity), zap.Int64("balance", bal))
	c.emit.Emit(identity, EventBalanceUpdate, bal)
}

// Disconnect não limpa saldo nem partidas; elas ficam como estão até o processo terminar
func (c *Coordinator) Disconnect(_ context.Context, identity string) {
	c.metrics.Connections.Dec()
	c.log.Info("player disconnected", logger.Identity(identity))
}

// Handle despacha um evento recebido de identity
func (c *Coordinator) Handle(ctx context.Context, identity, event string, data json.RawMessage) {
	switch event {
	case EventCreateGame:
		c.createGame(ctx, identity, data)
	case EventJoinGame:
		c.joinGame(ctx, identity, data)
	case EventFlip:
		c.flip(ctx, identity, data)
	default:
		c.reject(identity, event, "unknown_event", MsgUnknownEvent)
	}
}

func (c *Coordinator) createGame(ctx context.Context, identity string, data json.RawMessage) {
	var req CreateGameRequest
	if err := decode(data, &req); err != nil {
		c.reject(identity, EventCreateGame, "malformed", MsgInvalidRequest)
		return
	}
	wager, err := ParseWager(req.Bet)
	if err != nil {
		c.reject(identity, EventCreateGame, reason(err), MsgInvalidBet)
		return
	}

	m, bal, err := c.matches.Create(identity, wager)
	if err != nil {
		c.log.Debug("create rejected", logger.Identity(identity), zap.Error(err))
		c.reject(identity, EventCreateGame, reason(err), MsgInvalidBet)
		return
	}
	c.metrics.Created.Inc()
	c.log.Info("game created", logger.MatchID(m.ID), logger.Identity(identity), zap.Int64("wager", wager))

	c.emit.Emit(identity, EventBalanceUpdate, bal)
	c.emit.Emit(identity, EventGameCreated, GameCreated{
		GameID:  m.ID,
		Message: fmt.Sprintf("Waiting for player 2... Bet: %d coins", wager),
	})

	c.publish(ctx, events.MatchEvent{
		Type:    events.TypeMatchCreated,
		MatchID: m.ID,
		Creator: m.Creator,
		Wager:   m.Wager,
		Ts:      m.CreatedAt,
	})
}

func (c *Coordinator) joinGame(ctx context.Context, identity string, data json.RawMessage) {
	var req GameRequest
	if err := decode(data, &req); err != nil {
		c.reject(identity, EventJoinGame, "malformed", MsgInvalidRequest)
		return
	}

	m, bal, err := c.matches.Join(identity, req.GameID)
	if err != nil {
		msg := MsgGameNotJoinable
		switch {
		case errors.Is(err, match.ErrSelfJoinForbidden):
			msg = MsgSelfJoin
		case errors.Is(err, ledger.ErrInsufficientFunds):
			msg = MsgNotEnoughToJoin
		}
		c.log.Debug("join rejected", logger.MatchID(req.GameID), logger.Identity(identity), zap.Error(err))
		c.reject(identity, EventJoinGame, reason(err), msg)
		return
	}
	c.metrics.Joined.Inc()
	c.log.Info("game ready", logger.MatchID(m.ID), zap.String("creator", m.Creator), zap.String("joiner", m.Joiner))

	c.emit.Emit(identity, EventBalanceUpdate, bal)
	c.emit.Emit(m.Creator, EventGameReady, GameReady{GameID: m.ID, Opponent: m.Joiner})
	c.emit.Emit(m.Joiner, EventGameReady, GameReady{GameID: m.ID, Opponent: m.Creator})

	c.publish(ctx, events.MatchEvent{
		Type:    events.TypeMatchReady,
		MatchID: m.ID,
		Creator: m.Creator,
		Joiner:  m.Joiner,
		Wager:   m.Wager,
		Ts:      time.Now(),
	})
}

func (c *Coordinator) flip(ctx context.Context, identity string, data json.RawMessage) {
	var req GameRequest
	if err := decode(data, &req); err != nil {
		c.reject(identity, EventFlip, "malformed", MsgInvalidRequest)
		return
	}

	s, err := c.matches.Resolve(identity, req.GameID)
	if err != nil {
		msg := MsgFlipFailed
		switch {
		case errors.Is(err, match.ErrAlreadyResolved):
			msg = MsgAlreadyFlipped
		case errors.Is(err, match.ErrMatchNotReady):
			msg = MsgGameNotReady
		default:
			c.log.Error("flip failed", logger.MatchID(req.GameID), zap.Error(err))
		}
		c.reject(identity, EventFlip, reason(err), msg)
		return
	}
	m := s.Match
	c.metrics.Resolved.Inc()
	c.metrics.FeesBurned.Add(float64(s.Fee))
	c.log.Info("game resolved",
		logger.MatchID(m.ID),
		zap.String("outcome", string(m.Outcome)),
		zap.String("winner", m.Winner),
		zap.String("resolvedBy", m.ResolvedBy),
		zap.Int64("winAmount", s.WinAmount),
		zap.Int64("fee", s.Fee),
	)

	participants := []string{m.Creator, m.Joiner}
	for _, p := range participants {
		c.emit.Emit(p, EventGameResult, s.Views[p])
	}
	for _, p := range participants {
		c.emit.Emit(p, EventBalanceUpdate, s.Views[p].YourNewBalance)
	}

	c.publish(ctx, events.MatchEvent{
		Type:       events.TypeMatchResolved,
		MatchID:    m.ID,
		Creator:    m.Creator,
		Joiner:     m.Joiner,
		Wager:      m.Wager,
		Outcome:    string(m.Outcome),
		Winner:     m.Winner,
		ResolvedBy: m.ResolvedBy,
		Pot:        s.Pot,
		Fee:        s.Fee,
		WinAmount:  s.WinAmount,
		Ts:         m.ResolvedAt,
	})
}

// reject envia o erro só para quem pediu
func (c *Coordinator) reject(identity, event, why, msg string) {
	c.metrics.Errors.WithLabelValues(event, why).Inc()
	c.emit.Emit(identity, EventError, msg)
}

// publish é best-effort: falhas ficam no log e não chegam ao cliente
func (c *Coordinator) publish(ctx context.Context, e events.MatchEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.PublishTimeout)
	defer cancel()

	if err := c.publ.Publish(ctx, e); err != nil {
		c.log.Warn("publish match event", zap.String("type", e.Type), logger.MatchID(e.MatchID), zap.Error(err))
	}
}

func decode(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(data, dst)
}

// reason traduz o erro para o label de métrica
func reason(err error) string {
	switch {
	case errors.Is(err, match.ErrInvalidWager):
		return "invalid_wager"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, match.ErrMatchNotFound):
		return "not_found"
	case errors.Is(err, match.ErrSelfJoinForbidden):
		return "self_join"
	case errors.Is(err, match.ErrMatchNotJoinable):
		return "not_joinable"
	case errors.Is(err, match.ErrAlreadyResolved):
		return "already_resolved"
	case errors.Is(err, match.ErrMatchNotReady):
		return "not_ready"
	default:
		return "internal"
	}
}
