// Package report renders the scored table for the presentation layer: the
// PDF export plus the filter and chart summaries the dashboard consumes.
package report

import (
	"bytes"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/markany/safepc-insider/internal/detector"
)

// DefaultMaxRows caps the PDF table body.
const DefaultMaxRows = 50

const (
	cellW = 38.0
	cellH = 10.0
)

var pdfHeaders = []string{"User", "logon_count", "http_count", "device_count", "status"}

// PDF renders the insider threat report: a title line and a bordered table
// of the first limit rows.
func PDF(rows []detector.ScoredRow, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxRows
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(200, cellH, "Insider Threat Detection Report", "", 1, "C", false, 0, "")
	pdf.Ln(cellH)

	for _, h := range pdfHeaders {
		pdf.CellFormat(cellW, cellH, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	for _, r := range rows {
		pdf.CellFormat(cellW, cellH, r.User, "1", 0, "", false, 0, "")
		pdf.CellFormat(cellW, cellH, strconv.Itoa(r.LogonCount), "1", 0, "", false, 0, "")
		pdf.CellFormat(cellW, cellH, strconv.Itoa(r.HTTPCount), "1", 0, "", false, 0, "")
		pdf.CellFormat(cellW, cellH, strconv.Itoa(r.DeviceCount), "1", 0, "", false, 0, "")
		pdf.CellFormat(cellW, cellH, string(r.Status), "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
