package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/utils"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Transaksi"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders the transaction history into a single-sheet workbook.
func (g *XLSXGenerator) Generate(ctx context.Context, trxs []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(trxs) == 0 {
		return nil, "", errors.New("empty transactions")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillSheet(f, trxs); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, trxs []model.Transaction) error {
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	err = f.MergeCell(sheetName, "A1", "I1")
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Riwayat Transaksi")

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("failed to apply style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "Waktu")
	_ = f.SetCellStr(sheetName, "B2", "Nama")
	_ = f.SetCellStr(sheetName, "C2", "IBAN / Rekening")
	_ = f.SetCellStr(sheetName, "D2", "IDR")
	_ = f.SetCellStr(sheetName, "E2", "TRY")
	_ = f.SetCellStr(sheetName, "F2", "Status")
	_ = f.SetCellStr(sheetName, "G2", "Username")
	_ = f.SetCellStr(sheetName, "H2", "User ID")
	_ = f.SetCellStr(sheetName, "I2", "Jenis")

	for i, trx := range trxs {
		rowNum := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), trx.CreatedAt.Format("2006-01-02 15:04:05"))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), trx.Name)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), trx.Destination)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), trx.AmountIDR.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), trx.AmountTRY.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", rowNum), trx.Status)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("G%d", rowNum), trx.Username)
		_ = f.SetCellInt(sheetName, fmt.Sprintf("H%d", rowNum), trx.UserID)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("I%d", rowNum), trx.Flow.Label())
	}

	return nil
}
