package match

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CoinSource sorteia o resultado de um lançamento
// Implementações precisam ser seguras para uso concorrente
type CoinSource interface {
	Flip() (Outcome, error)
}

// CryptoCoin usa crypto/rand, sem viés entre cara e coroa
type CryptoCoin struct{}

func (CryptoCoin) Flip() (Outcome, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return "", fmt.Errorf("draw coin: %w", err)
	}
	if n.Int64() == 0 {
		return OutcomeHeads, nil
	}
	return OutcomeTails, nil
}

// FixedCoin sempre retorna o mesmo resultado (útil em testes)
type FixedCoin Outcome

func (c FixedCoin) Flip() (Outcome, error) { return Outcome(c), nil }
