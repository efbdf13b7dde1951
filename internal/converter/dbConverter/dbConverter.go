package dbConverter

import (
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/internal/model/dbModel"
)

func ConvertTransaction(dbTrx dbModel.Transaction) model.Transaction {
	return model.Transaction{
		CreatedAt:   dbTrx.CreatedAt,
		Name:        dbTrx.Name,
		Destination: dbTrx.Destination,
		AmountIDR:   dbTrx.AmountIDR,
		AmountTRY:   dbTrx.AmountTRY,
		Status:      dbTrx.Status,
		Username:    dbTrx.Username,
		UserID:      dbTrx.UserID,
		Flow:        flowFromLabel(dbTrx.Flow),
	}
}

func flowFromLabel(label string) model.Flow {
	switch label {
	case model.FlowBuy.Label():
		return model.FlowBuy
	case model.FlowSell.Label():
		return model.FlowSell
	default:
		return model.FlowNone
	}
}
