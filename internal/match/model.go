package match

import "time"

// State representa a fase de uma partida
// AwaitingOpponent -> Ready -> Resolved, sem volta e sem pular etapas
type State string

const (
	StateAwaitingOpponent State = "AWAITING_OPPONENT"
	StateReady            State = "READY"
	StateResolved         State = "RESOLVED"
)

type Outcome string

const (
	OutcomeHeads Outcome = "HEADS"
	OutcomeTails Outcome = "TAILS"
)

const (
	MessageWin  = "You win!"
	MessageLose = "You lose!"
)

// Match é uma cópia do estado de uma partida; alterações nela não afetam o registry
type Match struct {
	ID         string    `json:"gameId"`
	Creator    string    `json:"creator"`
	Joiner     string    `json:"joiner,omitempty"`
	Wager      int64     `json:"wager"`
	State      State     `json:"state"`
	Outcome    Outcome   `json:"outcome,omitempty"`
	Winner     string    `json:"winner,omitempty"`
	ResolvedBy string    `json:"resolvedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// Opponent retorna o outro participante da partida
func (m Match) Opponent(identity string) string {
	if identity == m.Creator {
		return m.Joiner
	}
	return m.Creator
}

// SettlementView é o resultado personalizado entregue a cada participante
type SettlementView struct {
	Outcome        Outcome `json:"outcome"`
	Message        string  `json:"message"`
	WinAmount      int64   `json:"winAmount"`
	Fee            int64   `json:"fee"`
	YourNewBalance int64   `json:"yourNewBalance"`
}

// Settlement agrupa o resultado de uma resolução
type Settlement struct {
	Match     Match
	Pot       int64
	Fee       int64
	WinAmount int64
	// Views por identidade (creator e joiner)
	Views map[string]SettlementView
}
