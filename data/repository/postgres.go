package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/internal/converter/dbConverter"
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/internal/model/dbModel"
	"github.com/lirakuid/liraku_bot/utils"
)

type Postgres struct {
	db  *sqlx.DB
	cfg *config.Config
}

func NewPostgres(cfg *config.Config, db *sqlx.DB) *Postgres {
	return &Postgres{db: db, cfg: cfg}
}

func (r *Postgres) InsertTransaction(ctx context.Context, trx model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions(dt_create, name, destination, amount_idr, amount_try, status, username, user_id, flow)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	slog.Debug("InsertTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.db.ExecContext(
		ctx,
		query,
		trx.CreatedAt,
		trx.Name,
		trx.Destination,
		trx.AmountIDR,
		trx.AmountTRY,
		trx.Status,
		trx.Username,
		trx.UserID,
		trx.Flow.Label(),
	)

	return err
}

func (r *Postgres) GetTransactionsSince(ctx context.Context, since time.Time) (trxs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, dt_create, name, destination, amount_idr, amount_try, status, username, user_id, flow
		FROM transactions
		WHERE dt_create >= $1
		ORDER BY dt_create`

	slog.Debug("GetTransactionsSince start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactionsSince failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactionsSince completed", slog.String("rqID", rqID))
		}
	}()

	dbTrxs := []dbModel.Transaction{}
	err = r.db.SelectContext(ctx, &dbTrxs, query, since)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	trxs = make([]model.Transaction, 0, len(dbTrxs))
	for _, dbTrx := range dbTrxs {
		trxs = append(trxs, dbConverter.ConvertTransaction(dbTrx))
	}

	return trxs, nil
}
