package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/data"
	"github.com/lirakuid/liraku_bot/data/repository"
	"github.com/lirakuid/liraku_bot/data/session"
	"github.com/lirakuid/liraku_bot/data/stockfile"
	"github.com/lirakuid/liraku_bot/internal/converter/telebotConverter"
	"github.com/lirakuid/liraku_bot/internal/externalApi/exchangeRateApi"
	"github.com/lirakuid/liraku_bot/internal/externalApi/sheetsApi"
	"github.com/lirakuid/liraku_bot/internal/httpserver"
	"github.com/lirakuid/liraku_bot/internal/reportGenerator/xlsxGenerator"
	"github.com/lirakuid/liraku_bot/internal/scheduler"
	"github.com/lirakuid/liraku_bot/internal/service/exchangeService"
	"github.com/lirakuid/liraku_bot/internal/stockledger"
	"github.com/lirakuid/liraku_bot/internal/tgbot"
	"github.com/lirakuid/liraku_bot/internal/transport/telegram"
	tele "gopkg.in/telebot.v4"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := repository.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisSession := session.NewRedisSession(redisClient, cfg)

	stockStore := stockfile.New(cfg.Exchange.StockFile)
	ledger := stockledger.New(stockStore, stockStore.Load())

	rateApi := exchangeRateApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	sheets := sheetsApi.New(ctx, cfg)

	exchangeSrv := exchangeService.New(cfg, rateApi, ledger, pgRepo, sheets, reportGenerator)

	tgController := telegram.NewController(cfg, exchangeSrv, redisSession)

	tgBot := tgbot.New(cfg, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	sched := scheduler.New()
	sched.NewCrontabJob("stock summary", func(ctx context.Context) error {
		if cfg.Telegram.AdminChatID == 0 {
			return nil
		}
		_, err := tgBot.Bot().Send(&tele.Chat{ID: cfg.Telegram.AdminChatID}, telebotConverter.StockSummary(ledger.Balances()))
		return err
	}, cfg.Jobs.StockSummaryCrontab)
	sched.Start()
	defer sched.Stop()

	httpSrv := httpserver.New(cfg)
	httpSrv.Start()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
