// Package reporting renders an on-demand PDF incident report from the
// active-threats list and aggregate stats (§2's "on-demand PDF incident
// report"). Grounded on the donor's own PDFExporter
// (header/stats/table/footer structuring over gofpdf's CellFormat/MultiCell
// API), rebuilt around ThreatDetection/DefenseStats since this spec has no
// ExecutiveSummary/vulnerability-report domain.
package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/oxide-sec/wisentry/internal/core/domain"
)

// PDFExporter renders incident reports to PDF bytes.
type PDFExporter struct{}

// NewPDFExporter returns a PDFExporter. It holds no state: every call to
// ExportIncidentReport is independent.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportIncidentReport builds a PDF summarizing the current defense stats
// and active threats.
func (e *PDFExporter) ExportIncidentReport(stats domain.DefenseStats, threats []domain.ThreatDetection) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, stats)
	e.addStats(pdf, stats)
	e.addThreatsTable(pdf, threats)
	e.addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("reporting: generate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, stats domain.DefenseStats) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "Wireless Threat Incident Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", stats.LastUpdate.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (e *PDFExporter) addStats(pdf *gofpdf.Fpdf, stats domain.DefenseStats) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Session Overview", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	rows := []struct {
		label string
		value string
	}{
		{"Threats Detected", fmt.Sprintf("%d", stats.ThreatsDetected)},
		{"Threats Blocked", fmt.Sprintf("%d", stats.ThreatsBlocked)},
		{"Networks Scanned", fmt.Sprintf("%d", stats.NetworksScanned)},
		{"Active Monitor Time", stats.ActiveMonitorTime.Round(time.Second).String()},
	}

	pdf.SetFont("Arial", "", 11)
	for _, row := range rows {
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, row.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(0, 7, row.value, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addThreatsTable(pdf *gofpdf.Fpdf, threats []domain.ThreatDetection) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Active Threats", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	if len(threats) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No active threats at report time", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(35, 8, "Source MAC", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Confidence", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Action", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 8, "Description", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, t := range threats {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}
		r, g, b := e.confidenceColor(t.Confidence)

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(35, 7, t.SourceMAC.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, string(t.Category), "1", 0, "L", false, 0, "")

		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(20, 7, fmt.Sprintf("%.0f%%", t.Confidence*100), "1", 0, "C", false, 0, "")

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(25, 7, string(t.RecommendedAction), "1", 0, "L", false, 0, "")

		desc := t.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		pdf.CellFormat(80, 7, desc, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) confidenceColor(confidence float64) (r, g, b int) {
	switch {
	case confidence >= 0.8:
		return 220, 53, 69
	case confidence >= 0.5:
		return 255, 149, 0
	default:
		return 52, 199, 89
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "Generated by wisentry", "", 1, "C", false, 0, "")
}
