package app

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// writeDigestPDF renders the plain-text digest as a minimal PDF, one
// line per row with the heading line emphasized. The HTML artifact is
// the styled rendering; this one only has to be printable.
func writeDigestPDF(text string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	// Fragments may carry em dashes; translate to the core-font charset.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	first := true
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			pdf.Ln(5)
			continue
		}
		if first {
			pdf.SetFont("Helvetica", "B", 13)
			pdf.CellFormat(0, 8, tr(line), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			first = false
			continue
		}
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(outPath)
}
