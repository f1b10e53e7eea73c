package export

import (
	"bytes"
	"fmt"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

// BuildMonthlyReportXLSX renders the monthly stats and the per-subscriber
// breakdown as an XLSX workbook.
func BuildMonthlyReportXLSX(stats *domain.MonthlyStats, rows []*domain.ObligationWithTotals) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	detailSheet := "subscribers"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(detailSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Monthly Collection Report")
	_ = f.SetCellValue(summarySheet, "A3", "Period")
	_ = f.SetCellValue(summarySheet, "B3", string(stats.Period))
	_ = f.SetCellValue(summarySheet, "A4", "Subscribers")
	_ = f.SetCellValue(summarySheet, "B4", stats.TotalCount)
	_ = f.SetCellValue(summarySheet, "A5", "Paid")
	_ = f.SetCellValue(summarySheet, "B5", stats.FullCount)
	_ = f.SetCellValue(summarySheet, "A6", "Partial")
	_ = f.SetCellValue(summarySheet, "B6", stats.PartialCount)
	_ = f.SetCellValue(summarySheet, "A7", "Settled")
	_ = f.SetCellValue(summarySheet, "B7", stats.SettledCount)
	_ = f.SetCellValue(summarySheet, "A8", "Unpaid")
	_ = f.SetCellValue(summarySheet, "B8", stats.UnpaidCount)
	_ = f.SetCellValue(summarySheet, "A9", "Total Collected")
	_ = f.SetCellValue(summarySheet, "B9", stats.TotalPaid.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A10", "Total Outstanding")
	_ = f.SetCellValue(summarySheet, "B10", stats.TotalRemaining.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A11", "Settled Amount")
	_ = f.SetCellValue(summarySheet, "B11", stats.SettledAmount.StringFixed(2))

	_ = f.SetCellValue(detailSheet, "A1", "Building")
	_ = f.SetCellValue(detailSheet, "B1", "Subscriber")
	_ = f.SetCellValue(detailSheet, "C1", "Amount")
	_ = f.SetCellValue(detailSheet, "D1", "Paid")
	_ = f.SetCellValue(detailSheet, "E1", "Remaining")
	_ = f.SetCellValue(detailSheet, "F1", "Status")
	for i, row := range rows {
		n := i + 2
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("A%d", n), row.BuildingName)
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("B%d", n), row.SubscriberName)
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("C%d", n), row.Amount.StringFixed(2))
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("D%d", n), row.TotalPaid.StringFixed(2))
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("E%d", n), row.Remaining().StringFixed(2))
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("F%d", n), row.Status().Display())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
