package events

import "time"

// Tipos de evento publicados em topics.MatchEvents
const (
	TypeMatchCreated  = "match_created"
	TypeMatchReady    = "match_ready"
	TypeMatchResolved = "match_resolved"
)

// MatchEvent é o envelope comum; apenas os campos da fase correspondente vêm preenchidos
type MatchEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Creator string `json:"creator"`
	Joiner  string `json:"joiner,omitempty"`
	Wager   int64  `json:"wager"`

	// Preenchidos só em match_resolved
	Outcome    string `json:"outcome,omitempty"`
	Winner     string `json:"winner,omitempty"`
	ResolvedBy string `json:"resolved_by,omitempty"`
	Pot        int64  `json:"pot,omitempty"`
	Fee        int64  `json:"fee,omitempty"`
	WinAmount  int64  `json:"win_amount,omitempty"`

	Ts time.Time `json:"ts"`
}
