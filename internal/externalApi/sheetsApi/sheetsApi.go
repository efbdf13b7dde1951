package sheetsApi

import (
	"context"
	"log/slog"

	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/utils"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// SheetsApi appends finished transactions as rows to the operator's
// spreadsheet. Delivery is best-effort; callers log and swallow failures.
type SheetsApi struct {
	srv *sheets.Service
	cfg *config.Config
}

func New(ctx context.Context, cfg *config.Config) *SheetsApi {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
	if err != nil {
		slog.Error("failed on sheets.NewService")
		panic(err)
	}
	return &SheetsApi{srv: srv, cfg: cfg}
}

func (a *SheetsApi) AppendTransaction(ctx context.Context, trx model.Transaction) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SheetsApi.AppendTransaction"

	slog.Debug("AppendTransaction start", slog.String("rqID", rqID), slog.String("op", op))

	// Row layout: Waktu, Nama, IBAN/Rekening, IDR, TRY, Status, Username, User ID, Jenis
	row := []any{
		trx.CreatedAt.Format(dateTimeLayout),
		trx.Name,
		trx.Destination,
		trx.AmountIDR.StringFixed(0),
		trx.AmountTRY.StringFixed(2),
		trx.Status,
		trx.Username,
		trx.UserID,
		trx.Flow.Label(),
	}

	valueRange := &sheets.ValueRange{Values: [][]any{row}}

	_, err := a.srv.Spreadsheets.Values.
		Append(a.cfg.Sheets.SpreadsheetID, a.cfg.Sheets.SheetRange, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on appending transaction row", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("AppendTransaction completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}
