package ledger

import (
	"errors"
	"fmt"
	"sync"
)

// StartingBalance é o saldo concedido a uma identidade na primeira conexão
const StartingBalance int64 = 100

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownIdentity   = errors.New("unknown identity")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// account guarda o saldo de uma identidade com lock próprio
type account struct {
	mu      sync.Mutex
	balance int64
}

// Ledger mantém os saldos em memória, por identidade
// O mapa só é travado para inserir/buscar contas; cada conta serializa suas próprias mutações
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

func New() *Ledger {
	return &Ledger{accounts: make(map[string]*account)}
}

// Ensure cria a conta com o saldo inicial caso ainda não exista e retorna o saldo atual
func (l *Ledger) Ensure(identity string) int64 {
	l.mu.RLock()
	acc, ok := l.accounts[identity]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		acc, ok = l.accounts[identity]
		if !ok {
			acc = &account{balance: StartingBalance}
			l.accounts[identity] = acc
		}
		l.mu.Unlock()
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.balance
}

// Debit retira amount do saldo; falha sem alterar nada se o saldo não cobrir
func (l *Ledger) Debit(identity string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit %d: %w", amount, ErrInvalidAmount)
	}
	acc, err := l.lookup(identity)
	if err != nil {
		return 0, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	if acc.balance < amount {
		return acc.balance, ErrInsufficientFunds
	}
	acc.balance -= amount
	return acc.balance, nil
}

// Credit soma amount ao saldo; zero é aceito
func (l *Ledger) Credit(identity string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit %d: %w", amount, ErrInvalidAmount)
	}
	acc, err := l.lookup(identity)
	if err != nil {
		return 0, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	acc.balance += amount
	return acc.balance, nil
}

func (l *Ledger) Get(identity string) (int64, error) {
	acc, err := l.lookup(identity)
	if err != nil {
		return 0, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.balance, nil
}

func (l *Ledger) lookup(identity string) (*account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, ok := l.accounts[identity]
	if !ok {
		return nil, fmt.Errorf("%q: %w", identity, ErrUnknownIdentity)
	}
	return acc, nil
}
