package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricing"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
)

var (
	grey     = &props.Color{Red: 100, Green: 100, Blue: 100}
	headerBg = &props.Color{Red: 51, Green: 51, Blue: 51}
	white    = &props.Color{Red: 255, Green: 255, Blue: 255}
	stripeBg = &props.Color{Red: 245, Green: 245, Blue: 245}
)

// PDF renders q as a formal bid document.
func PDF(q quote.Quote, opts quote.BidOptions) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	company := opts.CompanyName
	if company == "" {
		company = quote.DefaultCompanyName
	}
	addHeader(m, q, company)
	addScope(m, q, opts)
	addLineItems(m, q)
	addTotals(m, q)
	addAlternatives(m, q)
	addNotes(m, q)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate bid pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, q quote.Quote, company string) {
	m.AddRows(
		row.New(10).Add(
			col.New(7).Add(text.New(company, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left})),
			col.New(5).Add(text.New("INSULATION BID", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right})),
		),
		row.New(6).Add(
			col.New(7).Add(text.New("Project: "+q.ProjectName, props.Text{Size: 9, Align: align.Left})),
			col.New(5).Add(text.New("Quote #: "+q.QuoteNumber, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
		),
		row.New(6).Add(
			col.New(12).Add(text.New("Date: "+q.Date, props.Text{Size: 8, Align: align.Right, Color: grey})),
		),
		row.New(3),
	)
}

func sectionTitle(m core.Maroto, title string) {
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(text.New(title, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left, Top: 2})),
		),
	)
}

func addScope(m core.Maroto, q quote.Quote, opts quote.BidOptions) {
	sectionTitle(m, "SCOPE OF WORK")
	desc := opts.ScopeDescription
	if desc == "" {
		desc = "External HVAC and mechanical insulation only."
	}
	lines := []string{desc}
	if opts.ExclusionSummary != "" {
		lines = append(lines, opts.ExclusionSummary)
	}
	lines = append(lines, fmt.Sprintf("Total bid reflects materials, labor, and %.0f%% contingency.", q.ContingencyPercent))
	for _, l := range lines {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(l, props.Text{Size: 8, Align: align.Left}))))
	}
}

func addLineItems(m core.Maroto, q quote.Quote) {
	sectionTitle(m, "MATERIAL SCHEDULE")

	head := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: white}
	headLeft := head
	headLeft.Align = align.Left
	cell := &props.Cell{BackgroundColor: headerBg}
	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(text.New("Description", headLeft)).WithStyle(cell),
			col.New(2).Add(text.New("Qty", head)).WithStyle(cell),
			col.New(1).Add(text.New("Unit", head)).WithStyle(cell),
			col.New(3).Add(text.New("Total", head)).WithStyle(cell),
		),
	)

	body := props.Text{Size: 8, Align: align.Left}
	num := props.Text{Size: 8, Align: align.Right}
	center := props.Text{Size: 8, Align: align.Center}
	for i, it := range q.Materials {
		cols := []core.Col{
			col.New(6).Add(text.New(it.Description, body)),
			col.New(2).Add(text.New(fmt.Sprintf("%.2f", it.Quantity), num)),
			col.New(1).Add(text.New(string(it.Unit), center)),
			col.New(3).Add(text.New(quote.FormatUSD(it.TotalPrice), num)),
		}
		if i%2 == 1 {
			for j := range cols {
				cols[j] = cols[j].WithStyle(&props.Cell{BackgroundColor: stripeBg})
			}
		}
		m.AddRows(row.New(6).Add(cols...))
	}
	m.AddRows(row.New(3))
}

func totalRow(label, value string, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	return row.New(6).Add(
		col.New(9).Add(text.New(label, props.Text{Size: 9, Style: style, Align: align.Right})),
		col.New(3).Add(text.New(value, props.Text{Size: 9, Style: style, Align: align.Right})),
	)
}

func addTotals(m core.Maroto, q quote.Quote) {
	sectionTitle(m, "FINANCIAL SUMMARY")
	for _, c := range quoteCategories(q) {
		m.AddRows(totalRow(quote.CategoryTitle(c.category), quote.FormatUSD(c.total), false))
	}
	m.AddRows(
		totalRow("Materials Subtotal", quote.FormatUSD(q.MaterialTotal()), false),
		totalRow(fmt.Sprintf("Labor: %.1f hours @ %s/hr", q.LaborHours, quote.FormatUSD(q.LaborRate)), quote.FormatUSD(q.LaborCost()), false),
		totalRow("Subtotal", quote.FormatUSD(q.Subtotal), false),
		totalRow(fmt.Sprintf("Contingency (%.0f%%)", q.ContingencyPercent), quote.FormatUSD(q.ContingencyAmount()), false),
		totalRow("TOTAL BID", quote.FormatUSD(q.Total()), true),
	)
}

func addAlternatives(m core.Maroto, q quote.Quote) {
	if len(q.Alternatives) == 0 {
		return
	}
	sectionTitle(m, "ALTERNATIVE OPTIONS")
	for _, alt := range q.Alternatives {
		m.AddRows(
			row.New(6).Add(
				col.New(6).Add(text.New(alt.Title, props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left})),
				col.New(3).Add(text.New("Standard "+quote.FormatUSD(alt.BaseCost), props.Text{Size: 8, Align: align.Right, Color: grey})),
				col.New(3).Add(text.New("Add "+quote.FormatUSD(alt.Difference), props.Text{Size: 8, Align: align.Right})),
			),
		)
	}
}

func addNotes(m core.Maroto, q quote.Quote) {
	sectionTitle(m, "TERMS AND NOTES")
	for i, n := range q.Notes {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(fmt.Sprintf("%d. %s", i+1, n), props.Text{Size: 8, Align: align.Left}))))
	}
	m.AddRows(row.New(6).Add(col.New(12).Add(text.New(
		"This bid is valid for 30 days from the date of issue. Final quantities subject to field verification.",
		props.Text{Size: 7, Align: align.Left, Color: grey},
	))))
}

type categoryTotal struct {
	category pricing.Category
	total    float64
}

func quoteCategories(q quote.Quote) []categoryTotal {
	totals := q.CategoryTotals()
	var out []categoryTotal
	for _, c := range pricing.Categories {
		if t, ok := totals[c]; ok {
			out = append(out, categoryTotal{c, t})
		}
	}
	return out
}
