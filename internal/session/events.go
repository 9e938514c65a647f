package session

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/radieske/coinflip-platform/internal/match"
)

// Eventos de entrada (cliente -> servidor)
const (
	EventCreateGame = "createGame"
	EventJoinGame   = "joinGame"
	EventFlip       = "flip"
)

// Eventos de saída (servidor -> cliente)
const (
	EventBalanceUpdate = "balanceUpdate"
	EventGameCreated   = "gameCreated"
	EventGameReady     = "gameReady"
	EventGameResult    = "gameResult"
	EventError         = "error"
)

// Mensagens de erro enviadas apenas a quem fez a requisição
const (
	MsgInvalidBet      = "Invalid bet or not enough coins"
	MsgGameNotJoinable = "Game not found or already started"
	MsgSelfJoin        = "You cannot join your own game"
	MsgNotEnoughToJoin = "Not enough coins to join"
	MsgGameNotReady    = "Game not ready or not found"
	MsgAlreadyFlipped  = "Game already flipped"
	MsgFlipFailed      = "Flip failed, try again"
	MsgInvalidRequest  = "Invalid request"
	MsgUnknownEvent    = "Unknown event"
)

type CreateGameRequest struct {
	Bet json.RawMessage `json:"bet"`
}

type GameRequest struct {
	GameID string `json:"gameId"`
}

type GameCreated struct {
	GameID  string `json:"gameId"`
	Message string `json:"message"`
}

type GameReady struct {
	GameID   string `json:"gameId"`
	Opponent string `json:"opponent"`
}

// ParseWager aceita número JSON ou string numérica (valores vindos de formulário)
// Só inteiros positivos passam; o resto é match.ErrInvalidWager
func ParseWager(raw json.RawMessage) (int64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("bet %q: %w", raw, match.ErrInvalidWager)
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("bet %q: %w", t, match.ErrInvalidWager)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("bet %s: %w", raw, match.ErrInvalidWager)
	}

	if math.IsNaN(f) || f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("bet %v: %w", f, match.ErrInvalidWager)
	}
	return int64(f), nil
}
