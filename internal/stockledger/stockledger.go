package stockledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/utils"
	"github.com/shopspring/decimal"
)

// Persister receives the full balance set after every successful mutation.
type Persister interface {
	Save(balances map[model.Currency]decimal.Decimal) error
}

// Ledger owns the two currency balances. It is the sole mutator of stock and
// every mutating operation runs in a single critical section, so balances can
// never go negative under concurrent sessions. Persistence is synchronous but
// best-effort: a failed write is logged, the in-memory commit stands.
type Ledger struct {
	mu       sync.RWMutex
	balances map[model.Currency]decimal.Decimal
	store    Persister
}

func New(store Persister, initial map[model.Currency]decimal.Decimal) *Ledger {
	balances := make(map[model.Currency]decimal.Decimal, 2)
	for _, currency := range []model.Currency{model.IDR, model.TRY} {
		amount, ok := initial[currency]
		if !ok {
			panic(fmt.Sprintf("stockledger: missing initial balance for %s", currency))
		}
		if amount.IsNegative() {
			panic(fmt.Sprintf("stockledger: negative initial balance for %s", currency))
		}
		balances[currency] = amount
	}
	return &Ledger{store: store, balances: balances}
}

// Availability returns the current balance. The value may be stale by the
// time a later mutation runs; settlement must re-check via TryReserve.
func (l *Ledger) Availability(currency model.Currency) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.mustBalance(currency)
}

// Balances returns a snapshot of both balances.
func (l *Ledger) Balances() map[model.Currency]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make(map[model.Currency]decimal.Decimal, len(l.balances))
	for currency, amount := range l.balances {
		snapshot[currency] = amount
	}
	return snapshot
}

// TryReserve atomically checks that the balance covers amount and decrements
// it. Returns ErrInsufficientStock without mutating otherwise.
func (l *Ledger) TryReserve(ctx context.Context, currency model.Currency, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		panic(fmt.Sprintf("stockledger: non-positive reserve amount %s", amount))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.mustBalance(currency)
	if balance.LessThan(amount) {
		return ErrInsufficientStock
	}

	l.balances[currency] = balance.Sub(amount)
	l.persistLocked(ctx)

	return nil
}

// Adjust applies a signed delta, rejecting with ErrWouldGoNegative when the
// result would drop below zero. Returns the balances before and after.
func (l *Ledger) Adjust(ctx context.Context, currency model.Currency, delta decimal.Decimal) (oldBalance, newBalance decimal.Decimal, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	oldBalance = l.mustBalance(currency)
	newBalance = oldBalance.Add(delta)
	if newBalance.IsNegative() {
		return oldBalance, oldBalance, ErrWouldGoNegative
	}

	l.balances[currency] = newBalance
	l.persistLocked(ctx)

	return oldBalance, newBalance, nil
}

func (l *Ledger) mustBalance(currency model.Currency) decimal.Decimal {
	balance, ok := l.balances[currency]
	if !ok {
		panic(fmt.Sprintf("stockledger: unknown currency %s", currency))
	}
	return balance
}

func (l *Ledger) persistLocked(ctx context.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	snapshot := make(map[model.Currency]decimal.Decimal, len(l.balances))
	for currency, amount := range l.balances {
		snapshot[currency] = amount
	}

	if err := l.store.Save(snapshot); err != nil {
		slog.Warn("stock persist failed, in-memory balances kept", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
}
