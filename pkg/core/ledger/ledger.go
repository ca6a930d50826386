// Package ledger provides the token balance/allowance primitive the engine
// settles against. The engine only ever sees the TokenLedger interface; the
// in-memory implementation here backs the devnet node and the test suite.
package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// TokenLedger is the settlement transfer primitive. TransferFrom moves
// amount of token from owner to recipient, consuming owner's allowance.
// Implementations return an error on insufficient balance or allowance;
// the engine aborts the whole settlement on any failure.
type TokenLedger interface {
	TransferFrom(token, owner, recipient common.Address, amount *big.Int) error

	// Refund reverses a completed TransferFrom when a later settlement leg
	// fails: it moves amount of token from holder back to owner without
	// touching allowances. It is the rollback half of the engine's
	// two-phase settlement commit.
	Refund(token, holder, owner common.Address, amount *big.Int) error
}

type balanceKey struct {
	token common.Address
	owner common.Address
}

// Ledger is an in-memory TokenLedger with approval semantics: an owner
// pre-authorizes the engine to spend up to an allowance per token, the way
// an on-chain maker approves the trading contract.
type Ledger struct {
	mu         sync.Mutex
	balances   map[balanceKey]*big.Int
	allowances map[balanceKey]*big.Int
}

func New() *Ledger {
	return &Ledger{
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[balanceKey]*big.Int),
	}
}

// Mint credits amount of token to owner. Devnet faucet use only.
func (l *Ledger) Mint(token, owner common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("mint amount must be positive: %v", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := balanceKey{token, owner}
	bal, ok := l.balances[k]
	if !ok {
		bal = new(big.Int)
		l.balances[k] = bal
	}
	bal.Add(bal, amount)
	return nil
}

// Approve sets the engine's allowance over owner's token balance.
// Overwrites any previous allowance.
func (l *Ledger) Approve(token, owner common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("allowance must be non-negative: %v", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.allowances[balanceKey{token, owner}] = new(big.Int).Set(amount)
	return nil
}

// BalanceOf returns owner's balance of token (zero if never credited).
func (l *Ledger) BalanceOf(token, owner common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bal, ok := l.balances[balanceKey{token, owner}]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Allowance returns the engine's remaining allowance over owner's token.
func (l *Ledger) Allowance(token, owner common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if al, ok := l.allowances[balanceKey{token, owner}]; ok {
		return new(big.Int).Set(al)
	}
	return new(big.Int)
}

// TransferFrom implements TokenLedger. The transfer and the allowance
// deduction happen together or not at all.
func (l *Ledger) TransferFrom(token, owner, recipient common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("transfer amount must be positive: %v", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ak := balanceKey{token, owner}
	allowance, ok := l.allowances[ak]
	if !ok || allowance.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient allowance: owner %s token %s", owner.Hex(), token.Hex())
	}

	bal, ok := l.balances[ak]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance: owner %s token %s", owner.Hex(), token.Hex())
	}

	bal.Sub(bal, amount)
	allowance.Sub(allowance, amount)

	rk := balanceKey{token, recipient}
	rbal, ok := l.balances[rk]
	if !ok {
		rbal = new(big.Int)
		l.balances[rk] = rbal
	}
	rbal.Add(rbal, amount)
	return nil
}

// Refund implements TokenLedger. Allowances are deliberately untouched: the
// owner's original approval is restored by the engine never having consumed
// the failed leg, and the refunded leg's allowance spend is given back.
func (l *Ledger) Refund(token, holder, owner common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("refund amount must be positive: %v", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	hk := balanceKey{token, holder}
	hbal, ok := l.balances[hk]
	if !ok || hbal.Cmp(amount) < 0 {
		return fmt.Errorf("refund exceeds holder balance: holder %s token %s", holder.Hex(), token.Hex())
	}
	hbal.Sub(hbal, amount)

	owk := balanceKey{token, owner}
	obal, exists := l.balances[owk]
	if !exists {
		obal = new(big.Int)
		l.balances[owk] = obal
	}
	obal.Add(obal, amount)

	// The refunded leg consumed allowance on the way out; give it back.
	if al, exists := l.allowances[balanceKey{token, owner}]; exists {
		al.Add(al, amount)
	}
	return nil
}
