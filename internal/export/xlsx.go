// Package export renders quotes as XLSX workbooks and PDF documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
)

const (
	quoteSheet     = "Quote"
	materialsSheet = "Material List"
	notesSheet     = "Notes"
)

// numFmtMoney is the built-in #,##0.00 format.
const numFmtMoney = 4

type styles struct {
	title, subtitle, header, body, money, label, total int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}
	if s.subtitle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 11}}); err != nil {
		return s, fmt.Errorf("create subtitle style: %w", err)
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.body, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}); err != nil {
		return s, fmt.Errorf("create body style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), NumFmt: numFmtMoney}); err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, Alignment: &excelize.Alignment{Horizontal: "right"}}); err != nil {
		return s, fmt.Errorf("create label style: %w", err)
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, NumFmt: numFmtMoney}); err != nil {
		return s, fmt.Errorf("create total style: %w", err)
	}
	return s, nil
}

// Workbook renders q as an XLSX file with the priced line items, the
// consolidated material list and the quote notes on separate sheets.
func Workbook(q quote.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), quoteSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	for _, name := range []string{materialsSheet, notesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	if err := writeQuoteSheet(f, st, q); err != nil {
		return nil, err
	}
	if err := writeMaterialSheet(f, st, q); err != nil {
		return nil, err
	}
	if err := writeNotesSheet(f, st, q); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func setWidths(f *excelize.File, sheet string, cols []string, widths []float64) error {
	for i, c := range cols {
		if err := f.SetColWidth(sheet, c, c, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", c, err)
		}
	}
	return nil
}

func writeHeading(f *excelize.File, st styles, sheet, lastCol, title string, lines ...string) error {
	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeExcelCell(title))
	f.SetCellStyle(sheet, "A1", lastCol+"1", st.title)
	for i, line := range lines {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetCellValue(sheet, cell, sanitizeExcelCell(line))
		f.SetCellStyle(sheet, cell, cell, st.subtitle)
	}
	return nil
}

func writeQuoteSheet(f *excelize.File, st styles, q quote.Quote) error {
	cols := []string{"A", "B", "C", "D", "E", "F", "G"}
	last := cols[len(cols)-1]
	if err := setWidths(f, quoteSheet, cols, []float64{10, 48, 14, 12, 8, 14, 16}); err != nil {
		return err
	}
	if err := writeHeading(f, st, quoteSheet, last, "HVAC Insulation Quote",
		"Project: "+q.ProjectName,
		"Quote Number: "+q.QuoteNumber,
		"Date: "+q.Date,
	); err != nil {
		return err
	}

	headers := []string{"Item", "Description", "Category", "Qty", "Unit", "Unit Price", "Total"}
	for i, h := range headers {
		f.SetCellValue(quoteSheet, fmt.Sprintf("%s6", cols[i]), h)
	}
	f.SetCellStyle(quoteSheet, "A6", last+"6", st.header)

	row := 7
	for _, it := range q.Materials {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(quoteSheet, "A"+r, sanitizeExcelCell(it.ItemID))
		f.SetCellValue(quoteSheet, "B"+r, sanitizeExcelCell(it.Description))
		f.SetCellValue(quoteSheet, "C"+r, string(it.Category))
		f.SetCellValue(quoteSheet, "D"+r, quote.RoundCents(it.Quantity))
		f.SetCellValue(quoteSheet, "E"+r, string(it.Unit))
		f.SetCellValue(quoteSheet, "F"+r, quote.RoundCents(it.UnitPrice))
		f.SetCellValue(quoteSheet, "G"+r, quote.RoundCents(it.TotalPrice))
		f.SetCellStyle(quoteSheet, "A"+r, "E"+r, st.body)
		f.SetCellStyle(quoteSheet, "F"+r, "G"+r, st.money)
		row++
	}

	row++
	summary := []struct {
		label string
		value float64
	}{
		{"Material Subtotal", q.MaterialTotal()},
		{fmt.Sprintf("Labor (%.1f hours @ %s/hr)", q.LaborHours, quote.FormatUSD(q.LaborRate)), q.LaborCost()},
		{"Subtotal", q.Subtotal},
		{fmt.Sprintf("Contingency (%g%%)", q.ContingencyPercent), q.ContingencyAmount()},
		{"TOTAL", q.Total()},
	}
	for _, s := range summary {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(quoteSheet, "F"+r, s.label)
		f.SetCellStyle(quoteSheet, "F"+r, "F"+r, st.label)
		f.SetCellValue(quoteSheet, "G"+r, quote.RoundCents(s.value))
		f.SetCellStyle(quoteSheet, "G"+r, "G"+r, st.total)
		row++
	}
	return nil
}

func writeMaterialSheet(f *excelize.File, st styles, q quote.Quote) error {
	cols := []string{"A", "B", "C", "D", "E"}
	last := cols[len(cols)-1]
	if err := setWidths(f, materialsSheet, cols, []float64{14, 48, 12, 8, 16}); err != nil {
		return err
	}
	if err := writeHeading(f, st, materialsSheet, last, "Material Order List",
		"Project: "+q.ProjectName,
		"Quote: "+q.QuoteNumber,
	); err != nil {
		return err
	}
	headers := []string{"Category", "Description", "Qty", "Unit", "Total"}
	for i, h := range headers {
		f.SetCellValue(materialsSheet, fmt.Sprintf("%s5", cols[i]), h)
	}
	f.SetCellStyle(materialsSheet, "A5", last+"5", st.header)

	row := 6
	for _, e := range q.MaterialList {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(materialsSheet, "A"+r, quote.CategoryTitle(e.Category))
		f.SetCellValue(materialsSheet, "B"+r, sanitizeExcelCell(e.Description))
		f.SetCellValue(materialsSheet, "C"+r, quote.RoundCents(e.Quantity))
		f.SetCellValue(materialsSheet, "D"+r, string(e.Unit))
		f.SetCellValue(materialsSheet, "E"+r, quote.RoundCents(e.TotalPrice))
		f.SetCellStyle(materialsSheet, "A"+r, "D"+r, st.body)
		f.SetCellStyle(materialsSheet, "E"+r, "E"+r, st.money)
		row++
	}
	return nil
}

func writeNotesSheet(f *excelize.File, st styles, q quote.Quote) error {
	if err := f.SetColWidth(notesSheet, "A", "A", 6); err != nil {
		return fmt.Errorf("set col width A: %w", err)
	}
	if err := f.SetColWidth(notesSheet, "B", "B", 90); err != nil {
		return fmt.Errorf("set col width B: %w", err)
	}
	if err := writeHeading(f, st, notesSheet, "B", "Notes"); err != nil {
		return err
	}
	for i, n := range q.Notes {
		r := fmt.Sprintf("%d", i+3)
		f.SetCellValue(notesSheet, "A"+r, i+1)
		f.SetCellValue(notesSheet, "B"+r, sanitizeExcelCell(n))
	}
	return nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
