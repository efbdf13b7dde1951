package exchangeRateApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/internal/externalApi"
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/internal/model/rateModel"
	"github.com/lirakuid/liraku_bot/utils"
	"github.com/shopspring/decimal"
)

// ExchangeRateApi fetches pair conversion rates from exchangerate-api v6.
// No caching and no retries here: every quote re-fetches and any failure maps
// to externalApi.ErrUnavailable, which callers treat as retryable.
type ExchangeRateApi struct {
	client *resty.Client
	apiKey string
}

func New(cfg *config.Config) *ExchangeRateApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.ExchangeRateApi.Url)
	return &ExchangeRateApi{client: client, apiKey: cfg.API.ExchangeRateApi.ApiKey}
}

func (a *ExchangeRateApi) GetRate(ctx context.Context, from, to model.Currency) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := fmt.Sprintf("/v6/%s/pair/%s/%s", a.apiKey, from, to)

	slog.Debug("start ExchangeRateApi.GetRate request", slog.String("rqID", rqID), slog.String("from", string(from)), slog.String("to", string(to)))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing ExchangeRateApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return decimal.Decimal{}, externalApi.ErrUnavailable
	}

	pairConversion := rateModel.PairConversion{}
	err = json.Unmarshal(resp.Body(), &pairConversion)
	if err != nil {
		slog.Error("can't unmarshall response into rateModel.PairConversion", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return decimal.Decimal{}, externalApi.ErrUnavailable
	}

	if pairConversion.Result != "success" {
		slog.Error("ExchangeRateApi returned failure", slog.String("rqID", rqID), slog.String("errorType", pairConversion.ErrorType))
		return decimal.Decimal{}, externalApi.ErrUnavailable
	}

	rate, err := decimal.NewFromString(pairConversion.ConversionRate.String())
	if err != nil {
		slog.Error("malformed conversion rate", slog.String("rqID", rqID), slog.String("rate", pairConversion.ConversionRate.String()))
		return decimal.Decimal{}, externalApi.ErrUnavailable
	}

	if rate.Sign() <= 0 {
		slog.Error("non-positive conversion rate", slog.String("rqID", rqID), slog.String("rate", rate.String()))
		return decimal.Decimal{}, externalApi.ErrUnavailable
	}

	slog.Debug("ExchangeRateApi.GetRate request complete", slog.String("rqID", rqID), slog.String("rate", rate.String()))

	return rate, nil
}
