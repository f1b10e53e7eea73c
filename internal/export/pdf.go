package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
)

// BuildDailyCollectionPDF renders the daily collection breakdown as a
// printable PDF, one table per building.
func BuildDailyCollectionPDF(collection *domain.DailyCollection) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Collection Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", collection.DayStart.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", collection.Period))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Collected: %s", collection.TotalCollected.StringFixed(2)))
	pdf.Ln(8)

	for _, group := range collection.Buildings {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, group.BuildingName)
		pdf.Ln(7)

		pdf.CellFormat(60, 6, "Subscriber", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Today", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Remaining", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, row := range group.Subscribers {
			pdf.CellFormat(60, 6, row.SubscriberName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, row.TodayPaid.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, row.Remaining.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, row.Status.Display(), "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 6, "Subtotal", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, group.TotalCollected.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, "", "1", 0, "C", false, 0, "")
		pdf.Ln(10)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
