package exchangeService

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/internal/service"
	"github.com/lirakuid/liraku_bot/internal/stockledger"
	"github.com/lirakuid/liraku_bot/utils"
	"github.com/shopspring/decimal"
)

// marginFactor is the hidden 2.5% spread, applied exactly once per quote and
// identical for both trade directions. Never disclosed to end users.
var marginFactor = decimal.RequireFromString("0.975")

// MinBuyAmountIDR is the minimum purchase in rupiah.
var MinBuyAmountIDR = decimal.NewFromInt(100_000)

var simulationBuyAmounts = []int64{100_000, 500_000, 1_000_000}
var simulationSellAmounts = []int64{100, 500, 1_000}

type RateApi interface {
	GetRate(ctx context.Context, from, to model.Currency) (decimal.Decimal, error)
}

type Ledger interface {
	Availability(currency model.Currency) decimal.Decimal
	Balances() map[model.Currency]decimal.Decimal
	TryReserve(ctx context.Context, currency model.Currency, amount decimal.Decimal) error
	Adjust(ctx context.Context, currency model.Currency, delta decimal.Decimal) (oldBalance, newBalance decimal.Decimal, err error)
}

type Repository interface {
	InsertTransaction(ctx context.Context, trx model.Transaction) error
	GetTransactionsSince(ctx context.Context, since time.Time) ([]model.Transaction, error)
}

type SheetsExporter interface {
	AppendTransaction(ctx context.Context, trx model.Transaction) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, trxs []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

type ExchangeService struct {
	cfg       *config.Config
	rateApi   RateApi
	ledger    Ledger
	repo      Repository
	sheets    SheetsExporter
	reportGen ReportGenerator
}

func New(cfg *config.Config, rateApi RateApi, ledger Ledger, repo Repository, sheets SheetsExporter, reportGen ReportGenerator) *ExchangeService {
	return &ExchangeService{
		cfg:       cfg,
		rateApi:   rateApi,
		ledger:    ledger,
		repo:      repo,
		sheets:    sheets,
		reportGen: reportGen,
	}
}

// quote fetches the live rate and applies the margin. Every call re-fetches:
// a quote is only valid for the flow instance that requested it.
func (s *ExchangeService) quote(ctx context.Context, from, to model.Currency, amount decimal.Decimal) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	rate, err := s.rateApi.GetRate(ctx, from, to)
	if err != nil {
		slog.Warn("rate fetch failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Quote{}, service.ErrRateUnavailable
	}

	return model.Quote{
		SourceAmount:   amount,
		SourceCurrency: from,
		QuotedAmount:   amount.Mul(rate).Mul(marginFactor),
		QuotedCurrency: to,
		RawRate:        rate,
	}, nil
}

func (s *ExchangeService) QuoteBuy(ctx context.Context, amountIDR decimal.Decimal) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExchangeService.QuoteBuy"

	slog.Debug("QuoteBuy start", slog.String("rqID", rqID), slog.String("op", op), slog.String("amount", amountIDR.String()))
	defer func() {
		slog.Debug("QuoteBuy finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	return s.quote(ctx, model.IDR, model.TRY, amountIDR)
}

func (s *ExchangeService) QuoteSell(ctx context.Context, amountTRY decimal.Decimal) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExchangeService.QuoteSell"

	slog.Debug("QuoteSell start", slog.String("rqID", rqID), slog.String("op", op), slog.String("amount", amountTRY.String()))
	defer func() {
		slog.Debug("QuoteSell finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	return s.quote(ctx, model.TRY, model.IDR, amountTRY)
}

// Simulation quotes the fixed amount ladder in both directions.
func (s *ExchangeService) Simulation(ctx context.Context) (model.Simulation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExchangeService.Simulation"

	slog.Debug("Simulation start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Simulation finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	idrToTry, err := s.rateApi.GetRate(ctx, model.IDR, model.TRY)
	if err != nil {
		return model.Simulation{}, service.ErrRateUnavailable
	}

	tryToIdr, err := s.rateApi.GetRate(ctx, model.TRY, model.IDR)
	if err != nil {
		return model.Simulation{}, service.ErrRateUnavailable
	}

	sim := model.Simulation{}
	for _, amount := range simulationBuyAmounts {
		d := decimal.NewFromInt(amount)
		sim.BuyRungs = append(sim.BuyRungs, model.Quote{
			SourceAmount:   d,
			SourceCurrency: model.IDR,
			QuotedAmount:   d.Mul(idrToTry).Mul(marginFactor),
			QuotedCurrency: model.TRY,
			RawRate:        idrToTry,
		})
	}
	for _, amount := range simulationSellAmounts {
		d := decimal.NewFromInt(amount)
		sim.SellRungs = append(sim.SellRungs, model.Quote{
			SourceAmount:   d,
			SourceCurrency: model.TRY,
			QuotedAmount:   d.Mul(tryToIdr).Mul(marginFactor),
			QuotedCurrency: model.IDR,
			RawRate:        tryToIdr,
		})
	}

	return sim, nil
}

// StockOverview reads both balances and, best-effort, their margin-quoted
// equivalents. A failed rate fetch leaves the equivalent nil.
func (s *ExchangeService) StockOverview(ctx context.Context) model.StockOverview {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExchangeService.StockOverview"

	slog.Debug("StockOverview start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("StockOverview finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	balances := s.ledger.Balances()

	overview := model.StockOverview{
		Rupiah: balances[model.IDR],
		Lira:   balances[model.TRY],
	}

	if overview.Rupiah.Sign() > 0 {
		if rate, err := s.rateApi.GetRate(ctx, model.IDR, model.TRY); err == nil {
			equivalent := overview.Rupiah.Mul(rate).Mul(marginFactor)
			overview.RupiahEquivalentTRY = &equivalent
		}
	}

	if overview.Lira.Sign() > 0 {
		if rate, err := s.rateApi.GetRate(ctx, model.TRY, model.IDR); err == nil {
			equivalent := overview.Lira.Mul(rate).Mul(marginFactor)
			overview.LiraEquivalentIDR = &equivalent
		}
	}

	return overview
}

func (s *ExchangeService) Availability(currency model.Currency) decimal.Decimal {
	return s.ledger.Availability(currency)
}

func (s *ExchangeService) Balances() map[model.Currency]decimal.Decimal {
	return s.ledger.Balances()
}

// ParseBuyAmount parses a rupiah amount typed by the user. Thousand
// separators are tolerated, fractions are not.
func (s *ExchangeService) ParseBuyAmount(text string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(text), ".", ""), ",", "")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil || !amount.IsInteger() || amount.Sign() <= 0 {
		return decimal.Decimal{}, service.ErrInvalidAmount
	}

	if amount.LessThan(MinBuyAmountIDR) {
		return decimal.Decimal{}, service.ErrBelowMinimum
	}

	return amount, nil
}

// ParseSellAmount parses a lira amount; decimal comma accepted.
func (s *ExchangeService) ParseSellAmount(text string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.Sign() <= 0 {
		return decimal.Decimal{}, service.ErrInvalidAmount
	}

	return amount, nil
}

// ParseStockDelta parses a signed delta for the operator stock update.
func (s *ExchangeService) ParseStockDelta(text string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")

	delta, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, service.ErrInvalidAmount
	}

	return delta, nil
}

func (s *ExchangeService) ValidateName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if len([]rune(name)) < 2 {
		return "", service.ErrInvalidName
	}
	return name, nil
}

// ValidateIban checks a Turkish IBAN: TR prefix, 24-28 chars, digits after
// the prefix. Spaces are stripped and the result is uppercased.
func (s *ExchangeService) ValidateIban(text string) (string, error) {
	iban := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(text)), " ", "")

	if !strings.HasPrefix(iban, "TR") {
		return "", service.ErrInvalidDestination
	}
	if len(iban) < 24 || len(iban) > 28 {
		return "", service.ErrInvalidDestination
	}
	for _, r := range iban[2:] {
		if r < '0' || r > '9' {
			return "", service.ErrInvalidDestination
		}
	}

	return iban, nil
}

// ValidateBankAccount checks the "[Nama Bank] - [Nomor Rekening]" form.
func (s *ExchangeService) ValidateBankAccount(text string) (string, error) {
	account := strings.TrimSpace(text)
	if len(account) < 5 || !strings.Contains(account, "-") {
		return "", service.ErrInvalidDestination
	}
	return account, nil
}

// reservation maps a flow to the stock currency and amount it consumes: a
// buy consumes rupiah stock for the amount paid, a sell consumes lira stock
// for the amount the user sends in.
func reservation(chatSession model.Session) (model.Currency, decimal.Decimal) {
	if chatSession.Flow == model.FlowSell {
		return model.TRY, chatSession.Amount
	}
	return model.IDR, chatSession.Amount
}

// CompleteTransaction is the single point where stock is mutated. It
// re-validates the session fields, atomically reserves stock (closing the
// race left open by the read-only check at the amount step), builds the
// immutable record and hands it to the recorder collaborators best-effort.
// exported=false means at least one of the postgres/sheets writes failed.
func (s *ExchangeService) CompleteTransaction(ctx context.Context, chatSession model.Session, userID int64, username string) (trx model.Transaction, exported bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExchangeService.CompleteTransaction"

	slog.Debug("CompleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("CompleteTransaction finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if chatSession.Flow != model.FlowBuy && chatSession.Flow != model.FlowSell {
		return model.Transaction{}, false, service.ErrIncompleteSession
	}
	if chatSession.Name == "" || chatSession.Destination == "" || chatSession.Amount.Sign() <= 0 || chatSession.QuotedAmount.Sign() <= 0 {
		slog.Error("session is missing required fields", slog.String("rqID", rqID), slog.String("op", op))
		return model.Transaction{}, false, service.ErrIncompleteSession
	}

	currency, amount := reservation(chatSession)
	if err := s.ledger.TryReserve(ctx, currency, amount); err != nil {
		if errors.Is(err, stockledger.ErrInsufficientStock) {
			slog.Warn(
				"stock exhausted at settlement",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("currency", string(currency)),
				slog.String("amount", amount.String()),
			)
		}
		return model.Transaction{}, false, err
	}

	trx = model.Transaction{
		CreatedAt:   time.Now(),
		Name:        chatSession.Name,
		Destination: chatSession.Destination,
		Status:      model.StatusPendingConfirmation,
		Username:    username,
		UserID:      userID,
		Flow:        chatSession.Flow,
	}

	if chatSession.Flow == model.FlowBuy {
		trx.AmountIDR = chatSession.Amount
		trx.AmountTRY = chatSession.QuotedAmount
	} else {
		trx.AmountTRY = chatSession.Amount
		trx.AmountIDR = chatSession.QuotedAmount
	}

	exported = true
	if err := s.repo.InsertTransaction(ctx, trx); err != nil {
		slog.Error("transaction history insert failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		exported = false
	}
	if err := s.sheets.AppendTransaction(ctx, trx); err != nil {
		slog.Error("sheets export failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		exported = false
	}

	return trx, exported, nil
}

// AdjustStock applies an operator-initiated delta.
func (s *ExchangeService) AdjustStock(ctx context.Context, currency model.Currency, delta decimal.Decimal) (oldBalance, newBalance decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExchangeService.AdjustStock"

	slog.Debug("AdjustStock start", slog.String("rqID", rqID), slog.String("op", op), slog.String("currency", string(currency)), slog.String("delta", delta.String()))
	defer func() {
		slog.Debug("AdjustStock finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	return s.ledger.Adjust(ctx, currency, delta)
}

// BuildReport generates the operator xlsx of transactions since the given
// time.
func (s *ExchangeService) BuildReport(ctx context.Context, since time.Time) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExchangeService.BuildReport"

	slog.Debug("BuildReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("BuildReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	trxs, err := s.repo.GetTransactionsSince(ctx, since)
	if err != nil {
		slog.Error("got error from repo.GetTransactionsSince", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return s.reportGen.Generate(ctx, trxs)
}
