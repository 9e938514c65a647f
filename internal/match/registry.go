package match

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FeePercent é a taxa retirada do pote; o valor não é creditado a ninguém
const FeePercent int64 = 10

var (
	ErrInvalidWager      = errors.New("invalid wager")
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchNotJoinable  = errors.New("match not joinable")
	ErrSelfJoinForbidden = errors.New("cannot join own match")
	ErrMatchNotReady     = errors.New("match not ready")
	ErrAlreadyResolved   = errors.New("match already resolved")
)

// Ledger define as operações de saldo que o registry usa para mover apostas
type Ledger interface {
	Debit(identity string, amount int64) (int64, error)
	Credit(identity string, amount int64) (int64, error)
	Get(identity string) (int64, error)
}

// entry protege uma partida com lock próprio, para partidas distintas não disputarem o mesmo mutex
type entry struct {
	mu sync.Mutex
	m  Match
}

// Registry mantém as partidas em andamento, em memória
// Ordem de locks: partida -> conta no ledger. O ledger nunca chama o registry.
type Registry struct {
	ledger Ledger
	coin   CoinSource
	now    func() time.Time

	mu      sync.RWMutex
	matches map[string]*entry
}

// NewRegistry cria o registry; coin nil usa CryptoCoin
func NewRegistry(l Ledger, coin CoinSource) *Registry {
	if coin == nil {
		coin = CryptoCoin{}
	}
	return &Registry{
		ledger:  l,
		coin:    coin,
		now:     time.Now,
		matches: make(map[string]*entry),
	}
}

// Create debita a aposta do criador e abre uma partida aguardando oponente
// Retorna a partida e o novo saldo do criador
func (r *Registry) Create(creator string, wager int64) (Match, int64, error) {
	if wager <= 0 {
		return Match{}, 0, fmt.Errorf("wager %d: %w", wager, ErrInvalidWager)
	}

	balance, err := r.ledger.Debit(creator, wager)
	if err != nil {
		return Match{}, 0, fmt.Errorf("debit creator: %w", err)
	}

	e := &entry{m: Match{
		ID:        uuid.NewString(),
		Creator:   creator,
		Wager:     wager,
		State:     StateAwaitingOpponent,
		CreatedAt: r.now(),
	}}

	r.mu.Lock()
	r.matches[e.m.ID] = e
	r.mu.Unlock()

	return e.m, balance, nil
}

// Join debita a aposta do oponente e deixa a partida pronta
// Retorna a partida e o novo saldo de quem entrou
func (r *Registry) Join(joiner, matchID string) (Match, int64, error) {
	e := r.lookup(matchID)
	if e == nil {
		return Match{}, 0, fmt.Errorf("join %q: %w", matchID, errors.Join(ErrMatchNotJoinable, ErrMatchNotFound))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.m.State != StateAwaitingOpponent {
		return Match{}, 0, fmt.Errorf("join %q in state %s: %w", matchID, e.m.State, ErrMatchNotJoinable)
	}
	if e.m.Creator == joiner {
		return Match{}, 0, fmt.Errorf("join %q: %w", matchID, ErrSelfJoinForbidden)
	}

	balance, err := r.ledger.Debit(joiner, e.m.Wager)
	if err != nil {
		return Match{}, 0, fmt.Errorf("debit joiner: %w", err)
	}

	e.m.Joiner = joiner
	e.m.State = StateReady
	return e.m, balance, nil
}

// Resolve sorteia o resultado, credita o vencedor e encerra a partida
// Qualquer identidade pode disparar; a resolução acontece no máximo uma vez
func (r *Registry) Resolve(requester, matchID string) (Settlement, error) {
	e := r.lookup(matchID)
	if e == nil {
		return Settlement{}, fmt.Errorf("resolve %q: %w", matchID, errors.Join(ErrMatchNotReady, ErrMatchNotFound))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.m.State {
	case StateReady:
	case StateResolved:
		return Settlement{}, fmt.Errorf("resolve %q: %w", matchID, ErrAlreadyResolved)
	default:
		return Settlement{}, fmt.Errorf("resolve %q in state %s: %w", matchID, e.m.State, ErrMatchNotReady)
	}

	outcome, err := r.coin.Flip()
	if err != nil {
		return Settlement{}, err
	}

	winner, loser := e.m.Creator, e.m.Joiner
	if outcome == OutcomeTails {
		winner, loser = loser, winner
	}

	pot, fee, winAmount := Payout(e.m.Wager)

	winnerBalance, err := r.ledger.Credit(winner, winAmount)
	if err != nil {
		return Settlement{}, fmt.Errorf("credit winner: %w", err)
	}
	loserBalance, err := r.ledger.Get(loser)
	if err != nil {
		// o crédito já ocorreu; a partida precisa ser encerrada mesmo assim
		loserBalance = 0
	}

	e.m.State = StateResolved
	e.m.Outcome = outcome
	e.m.Winner = winner
	e.m.ResolvedBy = requester
	e.m.ResolvedAt = r.now()

	return Settlement{
		Match:     e.m,
		Pot:       pot,
		Fee:       fee,
		WinAmount: winAmount,
		Views: map[string]SettlementView{
			winner: {Outcome: outcome, Message: MessageWin, WinAmount: winAmount, Fee: fee, YourNewBalance: winnerBalance},
			loser:  {Outcome: outcome, Message: MessageLose, WinAmount: 0, Fee: fee, YourNewBalance: loserBalance},
		},
	}, nil
}

// Get retorna uma cópia da partida
func (r *Registry) Get(matchID string) (Match, error) {
	e := r.lookup(matchID)
	if e == nil {
		return Match{}, fmt.Errorf("%q: %w", matchID, ErrMatchNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m, nil
}

func (r *Registry) lookup(matchID string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matches[matchID]
}

// Payout calcula pote, taxa (arredondada para baixo) e prêmio para uma aposta
func Payout(wager int64) (pot, fee, winAmount int64) {
	pot = 2 * wager
	fee = pot * FeePercent / 100
	return pot, fee, pot - fee
}
