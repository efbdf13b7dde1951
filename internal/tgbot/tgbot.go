package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/data/session"
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/internal/model/tg/tgCallback"
	"github.com/lirakuid/liraku_bot/internal/transport/telegram"
	customMW "github.com/lirakuid/liraku_bot/internal/transport/telegram/middleware"
	"github.com/lirakuid/liraku_bot/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, chatSession model.Session) error
}

type TGBot struct {
	bot     *tele.Bot
	ctrl    *telegram.Controller
	session Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session Session) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger(), customMW.SerializePerChat())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

// Bot exposes the underlying client for out-of-band sends (scheduler jobs).
func (b *TGBot) Bot() *tele.Bot {
	return b.bot
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		// free text is dispatched on the session's current step
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)
		chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send("❌ Terjadi kesalahan. Silakan coba lagi.")
		}

		c.Set("session", chatSession)

		switch chatSession.State {
		case model.ExpectingBuyAmount:
			return b.ctrl.ProcessBuyAmount(c)
		case model.ExpectingBuyName:
			return b.ctrl.ProcessBuyName(c)
		case model.ExpectingBuyIban:
			return b.ctrl.ProcessBuyIban(c)
		case model.ExpectingSellAmount:
			return b.ctrl.ProcessSellAmount(c)
		case model.ExpectingSellName:
			return b.ctrl.ProcessSellName(c)
		case model.ExpectingSellAccount:
			return b.ctrl.ProcessSellAccount(c)
		case model.ExpectingStockDelta:
			return b.ctrl.ProcessStockDelta(c)
		default:
			return b.ctrl.UnexpectedText(c)
		}
	})

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/cancel", b.ctrl.Cancel)
	b.bot.Handle("/report", b.ctrl.ExportReport)

	b.bot.Handle(&tele.Btn{Unique: tgCallback.MainMenu}, b.ctrl.MainMenu)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Back}, b.ctrl.Back)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.BuyLira}, b.ctrl.InitBuy)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.SellLira}, b.ctrl.InitSell)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.Simulation}, b.ctrl.Simulation)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.CheckStock}, b.ctrl.CheckStock)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ContactAdmin}, b.ctrl.ContactAdmin)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ConfirmTransaction}, b.ctrl.ConfirmTransaction)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.PaymentSent}, b.ctrl.SettlementAck)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.SellSent}, b.ctrl.SettlementAck)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.UpdateStock}, b.ctrl.InitStockUpdate)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.UpdateRupiah}, b.ctrl.InitStockDeltaRupiah)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.UpdateLira}, b.ctrl.InitStockDeltaLira)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ExportReport}, b.ctrl.ExportReport)
}
