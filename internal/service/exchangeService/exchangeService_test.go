package exchangeService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/internal/service"
	"github.com/lirakuid/liraku_bot/internal/stockledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateApiStub struct {
	rates map[string]decimal.Decimal
	err   error
}

func (r *rateApiStub) GetRate(_ context.Context, from, to model.Currency) (decimal.Decimal, error) {
	if r.err != nil {
		return decimal.Decimal{}, r.err
	}
	return r.rates[string(from)+string(to)], nil
}

type repoStub struct {
	inserted  []model.Transaction
	insertErr error
	trxs      []model.Transaction
}

func (r *repoStub) InsertTransaction(_ context.Context, trx model.Transaction) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, trx)
	return nil
}

func (r *repoStub) GetTransactionsSince(_ context.Context, _ time.Time) ([]model.Transaction, error) {
	return r.trxs, nil
}

type sheetsStub struct {
	appended []model.Transaction
	err      error
}

func (s *sheetsStub) AppendTransaction(_ context.Context, trx model.Transaction) error {
	if s.err != nil {
		return s.err
	}
	s.appended = append(s.appended, trx)
	return nil
}

type reportGenStub struct{}

func (g *reportGenStub) Generate(_ context.Context, _ []model.Transaction) ([]byte, string, error) {
	return []byte("xlsx"), ".xlsx", nil
}

type noopPersister struct{}

func (noopPersister) Save(_ map[model.Currency]decimal.Decimal) error { return nil }

func newTestService(t *testing.T, idr, try int64, rates *rateApiStub) (*ExchangeService, *stockledger.Ledger, *repoStub, *sheetsStub) {
	t.Helper()

	ledger := stockledger.New(noopPersister{}, map[model.Currency]decimal.Decimal{
		model.IDR: decimal.NewFromInt(idr),
		model.TRY: decimal.NewFromInt(try),
	})
	repo := &repoStub{}
	sheets := &sheetsStub{}

	svc := New(&config.Config{}, rates, ledger, repo, sheets, &reportGenStub{})
	return svc, ledger, repo, sheets
}

func buyRates(idrToTry string) *rateApiStub {
	return &rateApiStub{rates: map[string]decimal.Decimal{
		"IDRTRY": decimal.RequireFromString(idrToTry),
	}}
}

func TestQuoteBuy_AppliesMarginExactlyOnce(t *testing.T) {
	svc, _, _, _ := newTestService(t, 2_500_000, 0, buyRates("2.0"))

	quote, err := svc.QuoteBuy(context.Background(), decimal.NewFromInt(500_000))
	require.NoError(t, err)

	// 500_000 * 2.0 * 0.975 = 975_000, exact
	assert.True(t, quote.QuotedAmount.Equal(decimal.NewFromInt(975_000)), "got %s", quote.QuotedAmount)
	assert.Equal(t, model.IDR, quote.SourceCurrency)
	assert.Equal(t, model.TRY, quote.QuotedCurrency)
	assert.True(t, quote.RawRate.Equal(decimal.RequireFromString("2.0")))
}

func TestQuoteSell_QuotesOppositeDirection(t *testing.T) {
	rates := &rateApiStub{rates: map[string]decimal.Decimal{
		"TRYIDR": decimal.RequireFromString("500"),
	}}
	svc, _, _, _ := newTestService(t, 0, 1_000, rates)

	quote, err := svc.QuoteSell(context.Background(), decimal.NewFromInt(100))
	require.NoError(t, err)

	// 100 * 500 * 0.975 = 48_750
	assert.True(t, quote.QuotedAmount.Equal(decimal.NewFromInt(48_750)))
	assert.Equal(t, model.TRY, quote.SourceCurrency)
	assert.Equal(t, model.IDR, quote.QuotedCurrency)
}

func TestQuote_RateFailureMapsToSentinel(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1_000_000, 0, &rateApiStub{err: errors.New("timeout")})

	_, err := svc.QuoteBuy(context.Background(), decimal.NewFromInt(500_000))
	require.ErrorIs(t, err, service.ErrRateUnavailable)
}

func TestQuote_DoesNotMutateStock(t *testing.T) {
	svc, ledger, _, _ := newTestService(t, 2_500_000, 0, buyRates("2.0"))

	_, err := svc.QuoteBuy(context.Background(), decimal.NewFromInt(500_000))
	require.NoError(t, err)

	assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(2_500_000)))
}

func TestSimulation_QuotesBothLadders(t *testing.T) {
	rates := &rateApiStub{rates: map[string]decimal.Decimal{
		"IDRTRY": decimal.RequireFromString("0.002"),
		"TRYIDR": decimal.RequireFromString("500"),
	}}
	svc, _, _, _ := newTestService(t, 1, 1, rates)

	sim, err := svc.Simulation(context.Background())
	require.NoError(t, err)

	require.Len(t, sim.BuyRungs, 3)
	require.Len(t, sim.SellRungs, 3)

	// 100_000 * 0.002 * 0.975 = 195
	assert.True(t, sim.BuyRungs[0].QuotedAmount.Equal(decimal.NewFromInt(195)))
	// 1_000 * 500 * 0.975 = 487_500
	assert.True(t, sim.SellRungs[2].QuotedAmount.Equal(decimal.NewFromInt(487_500)))
}

func TestParseBuyAmount(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, 1, buyRates("2.0"))

	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "plain", input: "500000", want: 500_000},
		{name: "dot separators", input: "1.500.000", want: 1_500_000},
		{name: "comma separators", input: "2,500,000", want: 2_500_000},
		{name: "whitespace", input: "  100000  ", want: 100_000},
		{name: "exactly minimum", input: "100000", want: 100_000},
		{name: "below minimum", input: "99999", wantErr: service.ErrBelowMinimum},
		{name: "zero", input: "0", wantErr: service.ErrInvalidAmount},
		{name: "negative", input: "-500000", wantErr: service.ErrInvalidAmount},
		{name: "not a number", input: "banyak", wantErr: service.ErrInvalidAmount},
		{name: "empty", input: "", wantErr: service.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ParseBuyAmount(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}
}

func TestParseSellAmount(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, 1, buyRates("2.0"))

	got, err := svc.ParseSellAmount("100,50")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("100.50")))

	got, err = svc.ParseSellAmount("250")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(250)))

	_, err = svc.ParseSellAmount("0")
	require.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = svc.ParseSellAmount("abc")
	require.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestParseStockDelta_AcceptsSignedValues(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, 1, buyRates("2.0"))

	got, err := svc.ParseStockDelta("-500000")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(-500_000)))

	got, err = svc.ParseStockDelta("1000000")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(1_000_000)))

	_, err = svc.ParseStockDelta("nol")
	require.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestValidateName(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, 1, buyRates("2.0"))

	name, err := svc.ValidateName("  Budi Santoso  ")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", name)

	_, err = svc.ValidateName("B")
	require.ErrorIs(t, err, service.ErrInvalidName)

	_, err = svc.ValidateName("   ")
	require.ErrorIs(t, err, service.ErrInvalidName)
}

func TestValidateIban(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, 1, buyRates("2.0"))

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid", input: "TR123456789012345678901234", want: "TR123456789012345678901234"},
		{name: "lowercase normalized", input: "tr123456789012345678901234", want: "TR123456789012345678901234"},
		{name: "spaces stripped", input: "TR12 3456 7890 1234 5678 9012 34", want: "TR123456789012345678901234"},
		{name: "26 digits", input: "TR12345678901234567890123456", want: "TR12345678901234567890123456"},
		{name: "wrong prefix", input: "DE123456789012345678901234", wantErr: true},
		{name: "too short", input: "TR1234567890123456789", wantErr: true},
		{name: "too long", input: "TR123456789012345678901234567", wantErr: true},
		{name: "letters after prefix", input: "TR12345678901234567890123X", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ValidateIban(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, service.ErrInvalidDestination)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateBankAccount(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, 1, buyRates("2.0"))

	account, err := svc.ValidateBankAccount("BCA - 1234567890")
	require.NoError(t, err)
	assert.Equal(t, "BCA - 1234567890", account)

	_, err = svc.ValidateBankAccount("BCA 1234567890")
	require.ErrorIs(t, err, service.ErrInvalidDestination)

	_, err = svc.ValidateBankAccount("B-1")
	require.ErrorIs(t, err, service.ErrInvalidDestination)
}

func buySession(amount, quoted int64) model.Session {
	return model.Session{
		Flow:         model.FlowBuy,
		State:        model.ExpectingBuyPaymentAck,
		Amount:       decimal.NewFromInt(amount),
		QuotedAmount: decimal.NewFromInt(quoted),
		RawRate:      decimal.RequireFromString("2.0"),
		Name:         "Budi Santoso",
		Destination:  "TR123456789012345678901234",
	}
}

func TestCompleteTransaction_BuyReservesRupiahOnce(t *testing.T) {
	svc, ledger, repo, sheets := newTestService(t, 2_500_000, 0, buyRates("2.0"))

	trx, exported, err := svc.CompleteTransaction(context.Background(), buySession(500_000, 975_000), 42, "budi")
	require.NoError(t, err)
	assert.True(t, exported)

	assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(2_000_000)))
	assert.True(t, trx.AmountIDR.Equal(decimal.NewFromInt(500_000)))
	assert.True(t, trx.AmountTRY.Equal(decimal.NewFromInt(975_000)))
	assert.Equal(t, model.StatusPendingConfirmation, trx.Status)
	assert.Equal(t, int64(42), trx.UserID)
	assert.Equal(t, "budi", trx.Username)
	assert.Equal(t, model.FlowBuy, trx.Flow)

	require.Len(t, repo.inserted, 1)
	require.Len(t, sheets.appended, 1)
}

func TestCompleteTransaction_SellReservesLira(t *testing.T) {
	svc, ledger, _, _ := newTestService(t, 0, 1_000, buyRates("2.0"))

	chatSession := model.Session{
		Flow:         model.FlowSell,
		State:        model.ExpectingSellTransferAck,
		Amount:       decimal.NewFromInt(100),
		QuotedAmount: decimal.NewFromInt(48_750),
		Name:         "Siti",
		Destination:  "BCA - 1234567890",
	}

	trx, _, err := svc.CompleteTransaction(context.Background(), chatSession, 7, "siti")
	require.NoError(t, err)

	assert.True(t, ledger.Availability(model.TRY).Equal(decimal.NewFromInt(900)))
	assert.True(t, trx.AmountTRY.Equal(decimal.NewFromInt(100)))
	assert.True(t, trx.AmountIDR.Equal(decimal.NewFromInt(48_750)))
	assert.Equal(t, model.FlowSell, trx.Flow)
}

func TestCompleteTransaction_InsufficientStockLeavesBalance(t *testing.T) {
	svc, ledger, repo, sheets := newTestService(t, 400_000, 0, buyRates("2.0"))

	_, _, err := svc.CompleteTransaction(context.Background(), buySession(500_000, 975_000), 42, "budi")
	require.ErrorIs(t, err, stockledger.ErrInsufficientStock)

	assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(400_000)))
	assert.Empty(t, repo.inserted)
	assert.Empty(t, sheets.appended)
}

func TestCompleteTransaction_IncompleteSessionRejected(t *testing.T) {
	svc, ledger, _, _ := newTestService(t, 2_500_000, 0, buyRates("2.0"))

	tests := []struct {
		name   string
		mutate func(s *model.Session)
	}{
		{name: "no flow", mutate: func(s *model.Session) { s.Flow = model.FlowNone }},
		{name: "missing name", mutate: func(s *model.Session) { s.Name = "" }},
		{name: "missing destination", mutate: func(s *model.Session) { s.Destination = "" }},
		{name: "zero amount", mutate: func(s *model.Session) { s.Amount = decimal.Zero }},
		{name: "zero quote", mutate: func(s *model.Session) { s.QuotedAmount = decimal.Zero }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatSession := buySession(500_000, 975_000)
			tt.mutate(&chatSession)

			_, _, err := svc.CompleteTransaction(context.Background(), chatSession, 42, "budi")
			require.ErrorIs(t, err, service.ErrIncompleteSession)
			assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(2_500_000)))
		})
	}
}

func TestCompleteTransaction_RecorderFailureIsNotFatal(t *testing.T) {
	svc, ledger, repo, sheets := newTestService(t, 2_500_000, 0, buyRates("2.0"))
	repo.insertErr = errors.New("pg down")
	sheets.err = errors.New("sheets down")

	trx, exported, err := svc.CompleteTransaction(context.Background(), buySession(500_000, 975_000), 42, "budi")
	require.NoError(t, err)

	assert.False(t, exported)
	assert.True(t, trx.AmountIDR.Equal(decimal.NewFromInt(500_000)))
	// stock mutation stands even though nothing was recorded
	assert.True(t, ledger.Availability(model.IDR).Equal(decimal.NewFromInt(2_000_000)))
}

func TestStockOverview_BestEffortEquivalents(t *testing.T) {
	rates := &rateApiStub{rates: map[string]decimal.Decimal{
		"IDRTRY": decimal.RequireFromString("0.002"),
	}}
	svc, _, _, _ := newTestService(t, 1_000_000, 0, rates)

	overview := svc.StockOverview(context.Background())

	assert.True(t, overview.Rupiah.Equal(decimal.NewFromInt(1_000_000)))
	require.NotNil(t, overview.RupiahEquivalentTRY)
	// 1_000_000 * 0.002 * 0.975 = 1_950
	assert.True(t, overview.RupiahEquivalentTRY.Equal(decimal.NewFromInt(1_950)))
	assert.Nil(t, overview.LiraEquivalentIDR)
}

func TestStockOverview_RateFailureLeavesEquivalentsNil(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1_000_000, 500, &rateApiStub{err: errors.New("down")})

	overview := svc.StockOverview(context.Background())

	assert.True(t, overview.Rupiah.Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, overview.Lira.Equal(decimal.NewFromInt(500)))
	assert.Nil(t, overview.RupiahEquivalentTRY)
	assert.Nil(t, overview.LiraEquivalentIDR)
}

func TestAdjustStock_PropagatesWouldGoNegative(t *testing.T) {
	svc, _, _, _ := newTestService(t, 0, 1_000, buyRates("2.0"))

	oldBalance, _, err := svc.AdjustStock(context.Background(), model.TRY, decimal.NewFromInt(-2_000))
	require.ErrorIs(t, err, stockledger.ErrWouldGoNegative)
	assert.True(t, oldBalance.Equal(decimal.NewFromInt(1_000)))
}

func TestBuildReport_GeneratesFromRepo(t *testing.T) {
	svc, _, repo, _ := newTestService(t, 1, 1, buyRates("2.0"))
	repo.trxs = []model.Transaction{{Name: "Budi"}}

	fileBytes, ext, err := svc.BuildReport(context.Background(), time.Now().AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)
	assert.NotEmpty(t, fileBytes)
}
