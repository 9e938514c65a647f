package match_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/coinflip-platform/internal/ledger"
	"github.com/radieske/coinflip-platform/internal/match"
)

func newRegistry(t *testing.T, coin match.CoinSource, ids ...string) (*match.Registry, *ledger.Ledger) {
	t.Helper()
	l := ledger.New()
	for _, id := range ids {
		l.Ensure(id)
	}
	return match.NewRegistry(l, coin), l
}

func balance(t *testing.T, l *ledger.Ledger, id string) int64 {
	t.Helper()
	b, err := l.Get(id)
	require.NoError(t, err)
	return b
}

type failingCoin struct{}

func (failingCoin) Flip() (match.Outcome, error) { return "", errors.New("entropy exhausted") }

func TestCreate(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, nil, "a")

	m, bal, err := reg.Create("a", 40)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bal)
	assert.Equal(t, int64(60), balance(t, l, "a"))
	assert.Equal(t, match.StateAwaitingOpponent, m.State)
	assert.Equal(t, "a", m.Creator)
	assert.NotEmpty(t, m.ID)

	stored, err := reg.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, stored)
}

func TestCreateInsufficientFunds(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, nil, "a")

	_, _, err := reg.Create("a", 150)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Equal(t, int64(100), balance(t, l, "a"))
}

func TestCreateInvalidWager(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, nil, "a")

	for _, w := range []int64{0, -1} {
		_, _, err := reg.Create("a", w)
		assert.ErrorIs(t, err, match.ErrInvalidWager)
	}
	assert.Equal(t, int64(100), balance(t, l, "a"))
}

func TestCreateIDsAreUnique(t *testing.T) {
	t.Parallel()

	reg, _ := newRegistry(t, nil, "a")

	seen := map[string]bool{}
	for range 100 {
		m, _, err := reg.Create("a", 1)
		require.NoError(t, err)
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, nil, "a", "b")

	m, _, err := reg.Create("a", 40)
	require.NoError(t, err)

	joined, bal, err := reg.Join("b", m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bal)
	assert.Equal(t, match.StateReady, joined.State)
	assert.Equal(t, "b", joined.Joiner)
	assert.Equal(t, "b", joined.Opponent("a"))
	assert.Equal(t, "a", joined.Opponent("b"))
	assert.Equal(t, int64(60), balance(t, l, "a"))
}

func TestJoinRejections(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, match.FixedCoin(match.OutcomeHeads), "a", "b", "c", "poor")
	_, err := l.Debit("poor", 95)
	require.NoError(t, err)

	m, _, err := reg.Create("a", 40)
	require.NoError(t, err)

	// própria partida
	_, _, err = reg.Join("a", m.ID)
	assert.ErrorIs(t, err, match.ErrSelfJoinForbidden)

	// saldo insuficiente não altera a partida
	_, _, err = reg.Join("poor", m.ID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	got, err := reg.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StateAwaitingOpponent, got.State)

	// partida inexistente
	_, _, err = reg.Join("b", "missing")
	assert.ErrorIs(t, err, match.ErrMatchNotJoinable)
	assert.ErrorIs(t, err, match.ErrMatchNotFound)

	_, _, err = reg.Join("b", m.ID)
	require.NoError(t, err)

	// partida já pronta
	_, _, err = reg.Join("c", m.ID)
	assert.ErrorIs(t, err, match.ErrMatchNotJoinable)

	_, err = reg.Resolve("c", m.ID)
	require.NoError(t, err)

	// partida encerrada
	_, _, err = reg.Join("c", m.ID)
	assert.ErrorIs(t, err, match.ErrMatchNotJoinable)

	assert.Equal(t, int64(100), balance(t, l, "c"))
	assert.Equal(t, int64(5), balance(t, l, "poor"))
}

func TestResolveScenario(t *testing.T) {
	t.Parallel()

	tests := []struct {
		coin          match.Outcome
		winner, loser string
	}{
		{match.OutcomeHeads, "a", "b"},
		{match.OutcomeTails, "b", "a"},
	}

	for _, tt := range tests {
		t.Run(string(tt.coin), func(t *testing.T) {
			t.Parallel()

			reg, l := newRegistry(t, match.FixedCoin(tt.coin), "a", "b")
			m, _, err := reg.Create("a", 40)
			require.NoError(t, err)
			_, _, err = reg.Join("b", m.ID)
			require.NoError(t, err)

			s, err := reg.Resolve("b", m.ID)
			require.NoError(t, err)

			assert.Equal(t, int64(80), s.Pot)
			assert.Equal(t, int64(8), s.Fee)
			assert.Equal(t, int64(72), s.WinAmount)
			assert.Equal(t, match.StateResolved, s.Match.State)
			assert.Equal(t, tt.coin, s.Match.Outcome)
			assert.Equal(t, tt.winner, s.Match.Winner)
			assert.Equal(t, "b", s.Match.ResolvedBy)

			assert.Equal(t, match.SettlementView{
				Outcome: tt.coin, Message: match.MessageWin, WinAmount: 72, Fee: 8, YourNewBalance: 132,
			}, s.Views[tt.winner])
			assert.Equal(t, match.SettlementView{
				Outcome: tt.coin, Message: match.MessageLose, WinAmount: 0, Fee: 8, YourNewBalance: 60,
			}, s.Views[tt.loser])

			assert.Equal(t, int64(132), balance(t, l, tt.winner))
			assert.Equal(t, int64(60), balance(t, l, tt.loser))
		})
	}
}

func TestResolveTwiceFails(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, match.FixedCoin(match.OutcomeHeads), "a", "b")
	m, _, err := reg.Create("a", 40)
	require.NoError(t, err)
	_, _, err = reg.Join("b", m.ID)
	require.NoError(t, err)

	_, err = reg.Resolve("a", m.ID)
	require.NoError(t, err)

	_, err = reg.Resolve("a", m.ID)
	assert.ErrorIs(t, err, match.ErrAlreadyResolved)
	assert.Equal(t, int64(132), balance(t, l, "a"))
	assert.Equal(t, int64(60), balance(t, l, "b"))
}

func TestResolveNotReady(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, nil, "a")
	m, _, err := reg.Create("a", 40)
	require.NoError(t, err)

	_, err = reg.Resolve("a", m.ID)
	assert.ErrorIs(t, err, match.ErrMatchNotReady)

	_, err = reg.Resolve("a", "missing")
	assert.ErrorIs(t, err, match.ErrMatchNotReady)
	assert.ErrorIs(t, err, match.ErrMatchNotFound)

	assert.Equal(t, int64(60), balance(t, l, "a"))
}

func TestResolveCoinFailureLeavesMatchReady(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, failingCoin{}, "a", "b")
	m, _, err := reg.Create("a", 10)
	require.NoError(t, err)
	_, _, err = reg.Join("b", m.ID)
	require.NoError(t, err)

	_, err = reg.Resolve("a", m.ID)
	require.Error(t, err)

	got, err := reg.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StateReady, got.State)
	assert.Equal(t, int64(90), balance(t, l, "a"))
	assert.Equal(t, int64(90), balance(t, l, "b"))
}

func TestPayout(t *testing.T) {
	t.Parallel()

	for w := int64(1); w <= 500; w++ {
		pot, fee, win := match.Payout(w)
		assert.Equal(t, 2*w, pot)
		assert.Equal(t, 2*w, win+fee)
		assert.Equal(t, w/5, fee, "wager %d", w) // floor(0.2*w)
	}
}

func TestConcurrentJoinSingleWinner(t *testing.T) {
	t.Parallel()

	const n = 32
	ids := []string{"creator"}
	for i := range n {
		ids = append(ids, fmt.Sprintf("joiner-%d", i))
	}
	reg, l := newRegistry(t, nil, ids...)

	m, _, err := reg.Create("creator", 10)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		success  atomic.Int32
		rejected atomic.Int32
	)
	for _, id := range ids[1:] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := reg.Join(id, m.ID)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, match.ErrMatchNotJoinable):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, int32(n-1), rejected.Load())

	got, err := reg.Get(m.ID)
	require.NoError(t, err)
	var total int64
	for _, id := range ids[1:] {
		total += balance(t, l, id)
	}
	// só o vencedor da corrida foi debitado
	assert.Equal(t, int64(n*100-10), total)
	assert.Equal(t, int64(90), balance(t, l, got.Joiner))
}

func TestConcurrentResolveSingleSettlement(t *testing.T) {
	t.Parallel()

	reg, l := newRegistry(t, nil, "a", "b")
	m, _, err := reg.Create("a", 50)
	require.NoError(t, err)
	_, _, err = reg.Join("b", m.ID)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		success atomic.Int32
		already atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Resolve("spectator", m.ID)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, match.ErrAlreadyResolved):
				already.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, int32(15), already.Load())
	// pote 100, taxa 10, prêmio 90: 50 + 140 no total
	assert.Equal(t, int64(190), balance(t, l, "a")+balance(t, l, "b"))
}

func TestCryptoCoinProducesBothSides(t *testing.T) {
	t.Parallel()

	seen := map[match.Outcome]int{}
	for range 200 {
		o, err := match.CryptoCoin{}.Flip()
		require.NoError(t, err)
		seen[o]++
	}
	assert.Len(t, seen, 2)
	assert.Equal(t, 200, seen[match.OutcomeHeads]+seen[match.OutcomeTails])
}
