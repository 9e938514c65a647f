package publisher

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/coinflip-platform/pkg/contracts/events"
)

// execer é o subconjunto de *sql.DB usado pelo journal
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS match_settlements (
	match_id     TEXT PRIMARY KEY,
	creator      TEXT NOT NULL,
	joiner       TEXT NOT NULL,
	wager        BIGINT NOT NULL,
	outcome      TEXT NOT NULL,
	winner       TEXT NOT NULL,
	resolved_by  TEXT NOT NULL,
	pot          BIGINT NOT NULL,
	fee          BIGINT NOT NULL,
	win_amount   BIGINT NOT NULL,
	resolved_at  TIMESTAMPTZ NOT NULL
)`

const insertSettlement = `
INSERT INTO match_settlements
	(match_id, creator, joiner, wager, outcome, winner, resolved_by, pot, fee, win_amount, resolved_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (match_id) DO NOTHING`

// Journal grava cada liquidação numa tabela append-only de auditoria
// Nada é lido de volta: o estado do jogo continua só em memória
type Journal struct{ db execer }

func NewJournal(db execer) *Journal { return &Journal{db: db} }

// EnsureSchema cria a tabela caso não exista
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create match_settlements: %w", err)
	}
	return nil
}

func (j *Journal) Publish(ctx context.Context, e events.MatchEvent) error {
	if e.Type != events.TypeMatchResolved {
		return nil
	}
	_, err := j.db.ExecContext(ctx, insertSettlement,
		e.MatchID, e.Creator, e.Joiner, e.Wager, e.Outcome, e.Winner, e.ResolvedBy,
		e.Pot, e.Fee, e.WinAmount, e.Ts)
	if err != nil {
		return fmt.Errorf("insert settlement %s: %w", e.MatchID, err)
	}
	return nil
}
