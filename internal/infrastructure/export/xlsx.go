package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/listing"
)

// SheetName is the worksheet holding the bills table
const SheetName = "Notes de frais"

// Headers are the column titles of the exported table
var Headers = []string{"Type", "Nom", "Date", "Montant", "TVA", "Pct", "Statut", "Commentaire", "Justificatif"}

// XLSXExporter writes bills page rows to an Excel workbook
type XLSXExporter struct {
	logger *zap.Logger
}

// NewXLSXExporter creates an exporter
func NewXLSXExporter(logger *zap.Logger) *XLSXExporter {
	return &XLSXExporter{logger: logger}
}

var _ listing.Exporter = (*XLSXExporter)(nil)

// Export writes one header row followed by one row per bill, in the order given
func (e *XLSXExporter) Export(ctx context.Context, w io.Writer, rows []listing.Row) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := file.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		values := rowValues(row)
		if err := file.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := file.SetColWidth(SheetName, "A", "I", 18); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Bills exported", zap.Int("row_count", len(rows)))
	return nil
}

func rowValues(row listing.Row) []interface{} {
	bill := row.Bill

	var amount interface{} = ""
	if bill.Amount != nil {
		amount = *bill.Amount
	}
	receipt := ""
	if bill.FileName != nil {
		receipt = *bill.FileName
	}

	return []interface{}{
		bill.Type,
		bill.Name,
		row.Date,
		amount,
		bill.VAT,
		bill.Pct,
		row.Status,
		bill.Commentary,
		receipt,
	}
}
