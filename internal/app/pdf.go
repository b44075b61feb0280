package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/qkbleads/internal/registry"
)

// summaryRows caps the rows listed in the PDF summary.
const summaryRows = 200

// writeSummaryPDF renders a printable overview of a run: parameters, counts
// and a table of the leading rows.
func writeSummaryPDF(outPath string, stats RunStats, req RunRequest, rs registry.ResultSet) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	// core fonts are cp1252; Albanian letters are covered
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("QKB export summary", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("QKB export: "+req.City), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		"Run: " + stats.RunID,
		"Started: " + stats.StartedAt.Format(time.RFC3339) + "  Finished: " + stats.FinishedAt.Format(time.RFC3339),
		fmt.Sprintf("Keywords: %d (failed %d)  Rows: %d", stats.Keywords, stats.FailedKeywords, stats.Rows),
	}
	if req.Region != "" {
		lines = append(lines, "Region: "+req.Region)
	}
	if rs.Contacts {
		lines = append(lines, fmt.Sprintf("Contact lookups: %d (found %d)", stats.ContactAttempts, stats.ContactsFound))
	}
	for _, l := range lines {
		pdf.CellFormat(0, 6, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	cols := []string{registry.ColNIPT, registry.ColName, registry.ColCity, registry.ColKeyword}
	widths := []float64{30, 95, 40, 60}
	if rs.Contacts {
		cols = append(cols, registry.ColEmail, registry.ColPhone)
		widths = []float64{28, 80, 30, 45, 55, 35}
	}
	pdf.SetFont("Helvetica", "B", 9)
	for i, c := range cols {
		pdf.CellFormat(widths[i], 7, c, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
	for n, r := range rs.Rows {
		if n >= summaryRows {
			pdf.CellFormat(0, 6, "... "+strconv.Itoa(len(rs.Rows)-summaryRows)+" more rows in the CSV export", "", 1, "L", false, 0, "")
			break
		}
		for i, c := range cols {
			v := r.Value(c)
			if c == registry.ColName && v == "" && r.Error != "" {
				v = "error: " + r.Error
			}
			pdf.CellFormat(widths[i], 5, tr(clip(pdf, v, widths[i]-1)), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.OutputFileAndClose(outPath)
}

// clip shortens s until it fits width at the current font.
func clip(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
