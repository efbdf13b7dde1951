package stockledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type persisterStub struct {
	mu    sync.Mutex
	saves int
	err   error
	last  map[model.Currency]decimal.Decimal
}

func (p *persisterStub) Save(balances map[model.Currency]decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	p.last = balances
	return p.err
}

func newLedger(t *testing.T, idr, try int64) (*Ledger, *persisterStub) {
	t.Helper()
	store := &persisterStub{}
	ledger := New(store, map[model.Currency]decimal.Decimal{
		model.IDR: decimal.NewFromInt(idr),
		model.TRY: decimal.NewFromInt(try),
	})
	return ledger, store
}

func TestNew_PanicsOnMissingBalance(t *testing.T) {
	require.Panics(t, func() {
		New(&persisterStub{}, map[model.Currency]decimal.Decimal{
			model.IDR: decimal.NewFromInt(100),
		})
	})
}

func TestNew_PanicsOnNegativeBalance(t *testing.T) {
	require.Panics(t, func() {
		New(&persisterStub{}, map[model.Currency]decimal.Decimal{
			model.IDR: decimal.NewFromInt(-1),
			model.TRY: decimal.Zero,
		})
	})
}

func TestTryReserve_DecrementsAndPersists(t *testing.T) {
	ledger, store := newLedger(t, 2_500_000, 0)

	err := ledger.TryReserve(context.Background(), model.IDR, decimal.NewFromInt(500_000))
	require.NoError(t, err)

	assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(2_000_000)))
	assert.Equal(t, 1, store.saves)
	assert.True(t, store.last[model.IDR].Equal(decimal.NewFromInt(2_000_000)))
}

func TestTryReserve_InsufficientLeavesBalanceUntouched(t *testing.T) {
	ledger, store := newLedger(t, 100_000, 0)

	err := ledger.TryReserve(context.Background(), model.IDR, decimal.NewFromInt(100_001))
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(100_000)))
	assert.Equal(t, 0, store.saves)
}

func TestTryReserve_ExactBalanceDrainsToZero(t *testing.T) {
	ledger, _ := newLedger(t, 100_000, 0)

	err := ledger.TryReserve(context.Background(), model.IDR, decimal.NewFromInt(100_000))
	require.NoError(t, err)

	assert.True(t, ledger.Availability(model.IDR).IsZero())
}

func TestTryReserve_PanicsOnNonPositiveAmount(t *testing.T) {
	ledger, _ := newLedger(t, 100_000, 0)

	require.Panics(t, func() {
		_ = ledger.TryReserve(context.Background(), model.IDR, decimal.Zero)
	})
	require.Panics(t, func() {
		_ = ledger.TryReserve(context.Background(), model.IDR, decimal.NewFromInt(-5))
	})
}

// Two sessions racing for more stock than exists: exactly one must win.
func TestTryReserve_ConcurrentNeverOversells(t *testing.T) {
	ledger, _ := newLedger(t, 2_500_000, 0)

	amounts := []int64{1_000_000, 2_000_000}
	errs := make([]error, len(amounts))

	var wg sync.WaitGroup
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount int64) {
			defer wg.Done()
			errs[i] = ledger.TryReserve(context.Background(), model.IDR, decimal.NewFromInt(amount))
		}(i, amount)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientStock)
			failures++
		}
	}
	require.Equal(t, 1, failures)
	assert.False(t, ledger.Availability(model.IDR).IsNegative())
}

func TestTryReserve_ManyConcurrentReservationsStayConsistent(t *testing.T) {
	const workers = 50
	ledger, _ := newLedger(t, workers*10, 0)

	var wg sync.WaitGroup
	succeeded := make([]bool, workers*2)
	for i := 0; i < workers*2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := ledger.TryReserve(context.Background(), model.IDR, decimal.NewFromInt(10))
			succeeded[i] = err == nil
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range succeeded {
		if ok {
			wins++
		}
	}
	assert.Equal(t, workers, wins)
	assert.True(t, ledger.Availability(model.IDR).IsZero())
}

func TestAdjust_PositiveAndNegativeDeltas(t *testing.T) {
	ledger, _ := newLedger(t, 0, 1_000)

	oldBalance, newBalance, err := ledger.Adjust(context.Background(), model.TRY, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, oldBalance.Equal(decimal.NewFromInt(1_000)))
	assert.True(t, newBalance.Equal(decimal.NewFromInt(1_500)))

	oldBalance, newBalance, err = ledger.Adjust(context.Background(), model.TRY, decimal.NewFromInt(-1_500))
	require.NoError(t, err)
	assert.True(t, oldBalance.Equal(decimal.NewFromInt(1_500)))
	assert.True(t, newBalance.IsZero())
}

func TestAdjust_WouldGoNegativeLeavesBalance(t *testing.T) {
	ledger, store := newLedger(t, 0, 1_000)

	oldBalance, newBalance, err := ledger.Adjust(context.Background(), model.TRY, decimal.NewFromInt(-1_001))
	require.ErrorIs(t, err, ErrWouldGoNegative)

	assert.True(t, oldBalance.Equal(decimal.NewFromInt(1_000)))
	assert.True(t, newBalance.Equal(decimal.NewFromInt(1_000)))
	assert.True(t, ledger.Availability(model.TRY).Equal(decimal.NewFromInt(1_000)))
	assert.Equal(t, 0, store.saves)
}

func TestMutation_KeepsInMemoryCommitWhenPersistFails(t *testing.T) {
	store := &persisterStub{err: errors.New("disk full")}
	ledger := New(store, map[model.Currency]decimal.Decimal{
		model.IDR: decimal.NewFromInt(1_000_000),
		model.TRY: decimal.Zero,
	})

	err := ledger.TryReserve(context.Background(), model.IDR, decimal.NewFromInt(300_000))
	require.NoError(t, err)

	assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(700_000)))
	assert.Equal(t, 1, store.saves)
}

func TestAvailability_PanicsOnUnknownCurrency(t *testing.T) {
	ledger, _ := newLedger(t, 100, 100)

	require.Panics(t, func() {
		ledger.Availability(model.Currency("USD"))
	})
}

func TestBalances_ReturnsDetachedSnapshot(t *testing.T) {
	ledger, _ := newLedger(t, 100, 200)

	snapshot := ledger.Balances()
	snapshot[model.IDR] = decimal.NewFromInt(999)

	assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(100)))
}
