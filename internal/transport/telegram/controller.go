package telegram

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/data/session"
	"github.com/lirakuid/liraku_bot/internal/converter/telebotConverter"
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/internal/service"
	"github.com/lirakuid/liraku_bot/internal/stockledger"
	"github.com/lirakuid/liraku_bot/utils"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg       = "❌ Terjadi kesalahan. Silakan coba lagi."
	rateUnavailableMsg   = "❌ Gagal mengambil data kurs. Silakan coba lagi."
	invalidBuyAmountMsg  = "❌ Format nominal tidak valid. Masukkan angka saja.\nContoh: 500000"
	belowMinimumMsg      = "❌ Minimal pembelian adalah Rp100.000\nSilakan masukkan nominal yang valid."
	invalidSellAmountMsg = "❌ Format jumlah tidak valid. Masukkan angka saja.\nContoh: 100 atau 100.50"
	invalidDeltaMsg      = "❌ Format angka tidak valid. Masukkan angka saja.\nContoh: 1000000 atau -500000"
	nameTooShortMsg      = "❌ Nama terlalu pendek. Masukkan nama lengkap yang valid."
	invalidIbanMsg       = "❌ IBAN tidak valid.\nFormat: TR + 24 angka\nContoh: TR123456789012345678901234"
	invalidAccountMsg    = "❌ Format rekening tidak valid.\nFormat: [Nama Bank] - [Nomor Rekening]\nContoh: BCA - 1234567890"
	incompleteSessionMsg = "❌ Data transaksi tidak lengkap. Silakan mulai transaksi baru."
	stockExhaustedMsg    = "❌ Maaf, stok baru saja habis dipakai transaksi lain.\nTransaksi dibatalkan, silakan hubungi admin."
	buyDisabledMsg       = "❌ Maaf, pembelian Lira sedang tidak tersedia."
	sellDisabledMsg      = "❌ Maaf, penjualan Lira sedang tidak tersedia."
	rupiahOutOfStockMsg  = "❌ Maaf, stok Rupiah sedang habis. Silakan coba lagi nanti atau hubungi admin."
	notAuthorizedMsg     = "❌ Anda tidak memiliki akses untuk fitur ini."
	cancelledMsg         = "❌ Transaksi dibatalkan."
)

type ExchangeService interface {
	QuoteBuy(ctx context.Context, amountIDR decimal.Decimal) (model.Quote, error)
	QuoteSell(ctx context.Context, amountTRY decimal.Decimal) (model.Quote, error)
	Simulation(ctx context.Context) (model.Simulation, error)
	StockOverview(ctx context.Context) model.StockOverview
	Availability(currency model.Currency) decimal.Decimal
	Balances() map[model.Currency]decimal.Decimal
	ParseBuyAmount(text string) (decimal.Decimal, error)
	ParseSellAmount(text string) (decimal.Decimal, error)
	ParseStockDelta(text string) (decimal.Decimal, error)
	ValidateName(text string) (string, error)
	ValidateIban(text string) (string, error)
	ValidateBankAccount(text string) (string, error)
	CompleteTransaction(ctx context.Context, chatSession model.Session, userID int64, username string) (trx model.Transaction, exported bool, err error)
	AdjustStock(ctx context.Context, currency model.Currency, delta decimal.Decimal) (oldBalance, newBalance decimal.Decimal, err error)
	BuildReport(ctx context.Context, since time.Time) (fileBytes []byte, fileExtension string, err error)
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, chatSession model.Session) error
	ClearSession(ctx context.Context, key string) error
}

type Controller struct {
	cfg             *config.Config
	exchangeService ExchangeService
	session         Session
}

func NewController(cfg *config.Config, exchangeService ExchangeService, session Session) *Controller {
	return &Controller{
		cfg:             cfg,
		exchangeService: exchangeService,
		session:         session,
	}
}

func (ctrl *Controller) isOwner(c tele.Context) bool {
	return c.Sender() != nil && c.Sender().ID == ctrl.cfg.Telegram.OwnerUserID
}

func (ctrl *Controller) chatKey(c tele.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get("session").(model.Session)
	if ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, ctrl.chatKey(c))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.Session{}, nil
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}
	return chatSession, nil
}

func (ctrl *Controller) saveSession(ctx context.Context, c tele.Context, chatSession model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	err := ctrl.session.SetSession(ctx, ctrl.chatKey(c), chatSession)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
	return err
}

func (ctrl *Controller) clearSession(ctx context.Context, c tele.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	if err := ctrl.session.ClearSession(ctx, ctrl.chatKey(c)); err != nil {
		slog.Error("got error from session.ClearSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
}

// Start handles /start: fresh session, main menu.
func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	ctrl.clearSession(ctx, c)

	text, markup := telebotConverter.MainMenu(ctrl.isOwner(c))
	return c.Send(text, markup)
}

// MainMenu handles the main-menu button: abandon any in-flight flow without
// touching stock.
func (ctrl *Controller) MainMenu(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()
	ctrl.clearSession(ctx, c)

	text, markup := telebotConverter.MainMenu(ctrl.isOwner(c))
	return c.Edit(text, markup)
}

// Cancel handles /cancel anywhere in a flow.
func (ctrl *Controller) Cancel(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	ctrl.clearSession(ctx, c)

	_, markup := telebotConverter.MainMenu(ctrl.isOwner(c))
	return c.Send(cancelledMsg, markup)
}

func (ctrl *Controller) InitBuy(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	if !ctrl.cfg.Exchange.BuyLiraEnabled {
		return c.Edit(buyDisabledMsg, telebotConverter.BackMenuMarkup())
	}

	if ctrl.exchangeService.Availability(model.IDR).Sign() <= 0 {
		return c.Edit(rupiahOutOfStockMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession := model.Session{Flow: model.FlowBuy, State: model.ExpectingBuyAmount}
	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	overview := ctrl.exchangeService.StockOverview(ctx)
	text, markup := telebotConverter.BuyAmountPrompt(overview.Rupiah, overview.RupiahEquivalentTRY)
	return c.Edit(text, markup)
}

func (ctrl *Controller) InitSell(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	if !ctrl.cfg.Exchange.SellLiraEnabled {
		return c.Edit(sellDisabledMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession := model.Session{Flow: model.FlowSell, State: model.ExpectingSellAmount}
	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.SellAmountPrompt(ctrl.exchangeService.Availability(model.TRY))
	return c.Edit(text, markup)
}

// ProcessBuyAmount validates the rupiah amount, pre-checks availability
// (read-only, may go stale) and quotes. Any rejection re-prompts without a
// state change.
func (ctrl *Controller) ProcessBuyAmount(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	amount, err := ctrl.exchangeService.ParseBuyAmount(c.Message().Text)
	if err != nil {
		if errors.Is(err, service.ErrBelowMinimum) {
			return c.Send(belowMinimumMsg, telebotConverter.BackMenuMarkup())
		}
		return c.Send(invalidBuyAmountMsg, telebotConverter.BackMenuMarkup())
	}

	availability := ctrl.exchangeService.Availability(model.IDR)
	if availability.LessThan(amount) {
		text, markup := telebotConverter.InsufficientStock(model.IDR, availability, amount)
		return c.Send(text, markup)
	}

	quote, err := ctrl.exchangeService.QuoteBuy(ctx, amount)
	if err != nil {
		slog.Warn("QuoteBuy failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(rateUnavailableMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession.Amount = quote.SourceAmount
	chatSession.QuotedAmount = quote.QuotedAmount
	chatSession.RawRate = quote.RawRate
	chatSession.Advance(model.ExpectingBuyName)

	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.BuyEstimate(chatSession)
	return c.Send(text, markup)
}

func (ctrl *Controller) ProcessSellAmount(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	amount, err := ctrl.exchangeService.ParseSellAmount(c.Message().Text)
	if err != nil {
		return c.Send(invalidSellAmountMsg, telebotConverter.BackMenuMarkup())
	}

	availability := ctrl.exchangeService.Availability(model.TRY)
	if availability.LessThan(amount) {
		text, markup := telebotConverter.InsufficientStock(model.TRY, availability, amount)
		return c.Send(text, markup)
	}

	quote, err := ctrl.exchangeService.QuoteSell(ctx, amount)
	if err != nil {
		slog.Warn("QuoteSell failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(rateUnavailableMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession.Amount = quote.SourceAmount
	chatSession.QuotedAmount = quote.QuotedAmount
	chatSession.RawRate = quote.RawRate
	chatSession.Advance(model.ExpectingSellName)

	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.SellEstimate(chatSession)
	return c.Send(text, markup)
}

func (ctrl *Controller) ProcessBuyName(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	name, err := ctrl.exchangeService.ValidateName(c.Message().Text)
	if err != nil {
		return c.Send(nameTooShortMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession.Name = name
	chatSession.Advance(model.ExpectingBuyIban)

	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.BuyIbanPrompt(name)
	return c.Send(text, markup)
}

func (ctrl *Controller) ProcessSellName(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	name, err := ctrl.exchangeService.ValidateName(c.Message().Text)
	if err != nil {
		return c.Send(nameTooShortMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession.Name = name
	chatSession.Advance(model.ExpectingSellAccount)

	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.SellAccountPrompt(name)
	return c.Send(text, markup)
}

func (ctrl *Controller) ProcessBuyIban(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	iban, err := ctrl.exchangeService.ValidateIban(c.Message().Text)
	if err != nil {
		return c.Send(invalidIbanMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession.Destination = iban
	chatSession.Advance(model.ExpectingBuyConfirmation)

	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.BuyConfirmation(chatSession)
	return c.Send(text, markup)
}

func (ctrl *Controller) ProcessSellAccount(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	account, err := ctrl.exchangeService.ValidateBankAccount(c.Message().Text)
	if err != nil {
		return c.Send(invalidAccountMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession.Destination = account
	chatSession.Advance(model.ExpectingSellConfirmation)

	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.SellConfirmation(chatSession)
	return c.Send(text, markup)
}

// ConfirmTransaction renders the payment/transfer instructions. No stock is
// mutated yet: the quote has only been shown, not settled.
func (ctrl *Controller) ConfirmTransaction(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	switch chatSession.State {
	case model.ExpectingBuyConfirmation:
		chatSession.Advance(model.ExpectingBuyPaymentAck)
		if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
			return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
		}
		text, markup := telebotConverter.BuyPaymentInstructions(chatSession, ctrl.cfg.Exchange)
		return c.Edit(text, markup)

	case model.ExpectingSellConfirmation:
		chatSession.Advance(model.ExpectingSellTransferAck)
		if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
			return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
		}
		text, markup := telebotConverter.SellTransferInstructions(chatSession, ctrl.cfg.Exchange.AdminIban)
		return c.Edit(text, markup)

	default:
		// stale button press, replay the current step
		return ctrl.replayCurrentState(ctx, c, chatSession)
	}
}

// SettlementAck is the only transition that mutates stock. A concurrent
// session may have consumed the balance since the amount-step check, so the
// reservation can still fail here; that failure is terminal for the flow.
func (ctrl *Controller) SettlementAck(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	_ = c.Respond()

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	if chatSession.State != model.ExpectingBuyPaymentAck && chatSession.State != model.ExpectingSellTransferAck {
		return ctrl.replayCurrentState(ctx, c, chatSession)
	}

	trx, exported, err := ctrl.exchangeService.CompleteTransaction(ctx, chatSession, c.Sender().ID, c.Sender().Username)
	if err != nil {
		ctrl.clearSession(ctx, c)

		if errors.Is(err, stockledger.ErrInsufficientStock) {
			return c.Edit(stockExhaustedMsg, telebotConverter.BackMenuMarkup())
		}
		if errors.Is(err, service.ErrIncompleteSession) {
			_, markup := telebotConverter.MainMenu(ctrl.isOwner(c))
			return c.Edit(incompleteSessionMsg, markup)
		}

		slog.Error("got error from exchangeService.CompleteTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	ctrl.notifyAdmin(ctx, c, trx, exported)
	ctrl.clearSession(ctx, c)

	var text string
	var markup *tele.ReplyMarkup
	if trx.Flow == model.FlowBuy {
		text, markup = telebotConverter.BuyCompleted(trx, ctrl.cfg.Exchange)
	} else {
		text, markup = telebotConverter.SellCompleted(trx, ctrl.cfg.Exchange)
	}
	return c.Edit(text, markup)
}

func (ctrl *Controller) notifyAdmin(ctx context.Context, c tele.Context, trx model.Transaction, exported bool) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if ctrl.cfg.Telegram.AdminChatID == 0 {
		slog.Warn("admin chat not configured, notification skipped", slog.String("rqID", rqID))
		return
	}

	text := telebotConverter.AdminOrderNotification(trx, ctrl.exchangeService.Balances(), exported)
	_, err := c.Bot().Send(&tele.Chat{ID: ctrl.cfg.Telegram.AdminChatID}, text)
	if err != nil {
		slog.Error("admin notification failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
}

// Back pops one state off the session history and replays that step's
// prompt. With no history left it degrades to the main menu.
func (ctrl *Controller) Back(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	if !chatSession.StepBack() || chatSession.State == model.DefaultState {
		ctrl.clearSession(ctx, c)
		text, markup := telebotConverter.MainMenu(ctrl.isOwner(c))
		return c.Edit(text, markup)
	}

	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	return ctrl.replayCurrentState(ctx, c, chatSession)
}

// replayCurrentState re-renders the prompt belonging to the session's
// current state. Used by Back and by stale/unrecognized button presses.
func (ctrl *Controller) replayCurrentState(ctx context.Context, c tele.Context, chatSession model.Session) error {
	var text string
	var markup *tele.ReplyMarkup

	switch chatSession.State {
	case model.ExpectingBuyAmount:
		overview := ctrl.exchangeService.StockOverview(ctx)
		text, markup = telebotConverter.BuyAmountPrompt(overview.Rupiah, overview.RupiahEquivalentTRY)
	case model.ExpectingBuyName:
		text, markup = telebotConverter.BuyEstimate(chatSession)
	case model.ExpectingBuyIban:
		text, markup = telebotConverter.BuyIbanPrompt(chatSession.Name)
	case model.ExpectingBuyConfirmation:
		text, markup = telebotConverter.BuyConfirmation(chatSession)
	case model.ExpectingBuyPaymentAck:
		text, markup = telebotConverter.BuyPaymentInstructions(chatSession, ctrl.cfg.Exchange)
	case model.ExpectingSellAmount:
		text, markup = telebotConverter.SellAmountPrompt(ctrl.exchangeService.Availability(model.TRY))
	case model.ExpectingSellName:
		text, markup = telebotConverter.SellEstimate(chatSession)
	case model.ExpectingSellAccount:
		text, markup = telebotConverter.SellAccountPrompt(chatSession.Name)
	case model.ExpectingSellConfirmation:
		text, markup = telebotConverter.SellConfirmation(chatSession)
	case model.ExpectingSellTransferAck:
		text, markup = telebotConverter.SellTransferInstructions(chatSession, ctrl.cfg.Exchange.AdminIban)
	case model.ExpectingStockDelta:
		text, markup = telebotConverter.StockDeltaPrompt(chatSession.StockCurrency, ctrl.exchangeService.Availability(chatSession.StockCurrency))
	default:
		ctrl.clearSession(ctx, c)
		text, markup = telebotConverter.MainMenu(ctrl.isOwner(c))
	}

	return c.Edit(text, markup)
}

func (ctrl *Controller) Simulation(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	sim, err := ctrl.exchangeService.Simulation(ctx)
	if err != nil {
		return c.Edit(rateUnavailableMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.SimulationView(sim)
	return c.Edit(text, markup)
}

func (ctrl *Controller) CheckStock(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	overview := ctrl.exchangeService.StockOverview(ctx)
	text, markup := telebotConverter.StockView(overview, ctrl.isOwner(c))
	return c.Edit(text, markup)
}

func (ctrl *Controller) ContactAdmin(c tele.Context) error {
	_ = c.Respond()

	text, markup := telebotConverter.ContactAdmin(ctrl.cfg.Exchange.AdminContact)
	return c.Edit(text, markup)
}

// InitStockUpdate shows the operator the currency picker. Unauthorized
// callers learn nothing about the ledger.
func (ctrl *Controller) InitStockUpdate(c tele.Context) error {
	_ = c.Respond()

	if !ctrl.isOwner(c) {
		return c.Edit(notAuthorizedMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.StockUpdatePicker(ctrl.exchangeService.Balances())
	return c.Edit(text, markup)
}

func (ctrl *Controller) InitStockDeltaRupiah(c tele.Context) error {
	return ctrl.initStockDelta(c, model.IDR)
}

func (ctrl *Controller) InitStockDeltaLira(c tele.Context) error {
	return ctrl.initStockDelta(c, model.TRY)
}

func (ctrl *Controller) initStockDelta(c tele.Context, currency model.Currency) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	if !ctrl.isOwner(c) {
		return c.Edit(notAuthorizedMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession := model.Session{Flow: model.FlowStockUpdate, State: model.ExpectingStockDelta, StockCurrency: currency}
	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Edit(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	text, markup := telebotConverter.StockDeltaPrompt(currency, ctrl.exchangeService.Availability(currency))
	return c.Edit(text, markup)
}

// ProcessStockDelta applies the operator's signed delta to the ledger.
func (ctrl *Controller) ProcessStockDelta(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if !ctrl.isOwner(c) {
		return c.Send(notAuthorizedMsg, telebotConverter.BackMenuMarkup())
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	if chatSession.StockCurrency == "" {
		ctrl.clearSession(ctx, c)
		_, markup := telebotConverter.MainMenu(true)
		return c.Send(incompleteSessionMsg, markup)
	}

	delta, err := ctrl.exchangeService.ParseStockDelta(c.Message().Text)
	if err != nil {
		return c.Send(invalidDeltaMsg, telebotConverter.BackMenuMarkup())
	}

	oldBalance, newBalance, err := ctrl.exchangeService.AdjustStock(ctx, chatSession.StockCurrency, delta)
	if err != nil {
		if errors.Is(err, stockledger.ErrWouldGoNegative) {
			text, markup := telebotConverter.StockWouldGoNegative(chatSession.StockCurrency, oldBalance)
			return c.Send(text, markup)
		}
		slog.Error("got error from exchangeService.AdjustStock", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	ctrl.clearSession(ctx, c)

	text, markup := telebotConverter.StockAdjusted(chatSession.StockCurrency, oldBalance, delta, newBalance)
	return c.Send(text, markup)
}

// ExportReport sends the operator the transaction history xlsx for the
// last month. Reachable both from the menu button and the /report command,
// so replies use Send rather than Edit.
func (ctrl *Controller) ExportReport(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	_ = c.Respond()

	if !ctrl.isOwner(c) {
		return c.Send(notAuthorizedMsg, telebotConverter.BackMenuMarkup())
	}

	fileBytes, fileExtension, err := ctrl.exchangeService.BuildReport(ctx, time.Now().AddDate(0, -1, 0))
	if err != nil {
		slog.Error("got error from exchangeService.BuildReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg, telebotConverter.BackMenuMarkup())
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(fileBytes)),
		FileName: "transaksi_" + time.Now().Format("2006-01") + fileExtension,
	}
	return c.Send(doc)
}

// UnexpectedText answers free text arriving outside any flow.
func (ctrl *Controller) UnexpectedText(c tele.Context) error {
	text, markup := telebotConverter.MainMenu(ctrl.isOwner(c))
	return c.Send("Silakan pilih salah satu menu di bawah:\n\n"+text, markup)
}
