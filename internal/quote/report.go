package quote

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricing"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

const reportWidth = 80

func rule(ch string, n int) string { return strings.Repeat(ch, n) }

// Text renders the customer quote report.
func Text(q Quote) string {
	var b strings.Builder

	b.WriteString(rule("=", reportWidth) + "\n")
	b.WriteString("HVAC INSULATION QUOTE\n")
	b.WriteString(rule("=", reportWidth) + "\n\n")
	fmt.Fprintf(&b, "Project: %s\n", q.ProjectName)
	fmt.Fprintf(&b, "Quote Number: %s\n", q.QuoteNumber)
	fmt.Fprintf(&b, "Date: %s\n\n", q.Date)

	b.WriteString(rule("-", reportWidth) + "\n")
	b.WriteString("MATERIALS\n")
	b.WriteString(rule("-", reportWidth) + "\n")
	fmt.Fprintf(&b, "%-50s %10s %-6s %12s\n", "Description", "Qty", "Unit", "Price")
	b.WriteString(rule("-", reportWidth) + "\n")
	for _, it := range q.Materials {
		fmt.Fprintf(&b, "%-50s %10.2f %-6s %12s\n", it.Description, it.Quantity, it.Unit, FormatUSD(it.TotalPrice))
	}

	b.WriteString("\nSYSTEM BREAKDOWN\n")
	b.WriteString(rule("-", reportWidth) + "\n")
	writeSystem(&b, q, takeoff.SystemDuct, "DUCTWORK SYSTEM", "Ductwork Subtotal")
	writeSystem(&b, q, takeoff.SystemPipe, "PIPING SYSTEM", "Piping Subtotal")

	if len(q.Alternatives) > 0 {
		b.WriteString("\nALTERNATIVE OPTIONS AND UPGRADES\n")
		b.WriteString(rule("-", reportWidth) + "\n")
		for _, alt := range q.Alternatives {
			fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(alt.Title))
			fmt.Fprintf(&b, "  %-28s %s\n", "Standard Installation Cost:", FormatUSD(alt.BaseCost))
			fmt.Fprintf(&b, "  %-28s %s\n", "Upgrade Installation Cost:", FormatUSD(alt.UpgradeCost))
			fmt.Fprintf(&b, "  %-28s %s\n", "Upgrade Difference:", FormatUSD(alt.Difference))
		}
	}

	b.WriteString("\n" + rule("=", reportWidth) + "\n")
	b.WriteString("QUOTE SUMMARY\n")
	b.WriteString(rule("-", reportWidth) + "\n")
	summaryLine(&b, "Material Subtotal", q.MaterialTotal())
	summaryLine(&b, fmt.Sprintf("Labor (%.1f hours @ %s/hr)", q.LaborHours, FormatUSD(q.LaborRate)), q.LaborCost())
	summaryLine(&b, "Subtotal", q.Subtotal)
	summaryLine(&b, fmt.Sprintf("Contingency (%s%%)", trimFloat(q.ContingencyPercent)), q.ContingencyAmount())
	b.WriteString(rule("=", reportWidth) + "\n")
	summaryLine(&b, "TOTAL", q.Total())
	b.WriteString(rule("=", reportWidth) + "\n\n")

	b.WriteString("NOTES:\n")
	for i, n := range q.Notes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, n)
	}
	return b.String()
}

// WriteText writes the customer quote report to w.
func WriteText(w io.Writer, q Quote) error {
	_, err := io.WriteString(w, Text(q))
	return err
}

func writeSystem(b *strings.Builder, q Quote, system takeoff.SystemType, heading, subtotal string) {
	var items []pricing.LineItem
	for _, it := range q.Materials {
		if it.System == system {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "  %-46s %12s\n", it.Description, FormatUSD(it.TotalPrice))
	}
	fmt.Fprintf(b, "%50s %12s\n", subtotal, FormatUSD(q.SystemSubtotal(system)))
}

func summaryLine(b *strings.Builder, label string, amount float64) {
	fmt.Fprintf(b, "%66s %13s\n", label, FormatUSD(amount))
}

// MaterialOrderList renders the consolidated distributor order.
func MaterialOrderList(q Quote) string {
	var b strings.Builder
	b.WriteString("MATERIAL ORDER LIST\n")
	b.WriteString(rule("=", reportWidth) + "\n\n")
	fmt.Fprintf(&b, "Project: %s\n", q.ProjectName)
	fmt.Fprintf(&b, "Quote: %s\n", q.QuoteNumber)
	fmt.Fprintf(&b, "Date: %s\n", q.Date)

	var current pricing.Category
	for _, e := range q.MaterialList {
		if e.Category != current {
			current = e.Category
			fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(string(current)))
			b.WriteString(rule("-", reportWidth) + "\n")
		}
		fmt.Fprintf(&b, "%-50s %10.2f %s\n", e.Description, e.Quantity, e.Unit)
	}
	return b.String()
}

// DefaultCompanyName heads bid packages when none is configured.
const DefaultCompanyName = "Guaranteed Insulation Inc."

// BidOptions customise the formal bid package.
type BidOptions struct {
	CompanyName      string
	ScopeDescription string
	// ExclusionSummary, when set, is printed under the scope of work.
	ExclusionSummary string
}

// BidPackage renders the formal bid: scope of work, financial breakdown,
// material schedule and terms.
func BidPackage(q Quote, opts BidOptions) string {
	company := opts.CompanyName
	if company == "" {
		company = DefaultCompanyName
	}
	scopeDesc := opts.ScopeDescription
	if scopeDesc == "" {
		scopeDesc = "External HVAC and mechanical insulation only."
	}
	section := "   " + rule("=", 70)
	divider := "   " + rule("-", 70)

	var b strings.Builder
	b.WriteString(rule("=", 78) + "\n")
	fmt.Fprintf(&b, "  %s\n", strings.ToUpper(company))
	b.WriteString("  FORMAL BID PACKAGE - EXTERNAL HVAC / MECHANICAL INSULATION\n")
	b.WriteString(rule("=", 78) + "\n\n")
	fmt.Fprintf(&b, "  Project:        %s\n", q.ProjectName)
	fmt.Fprintf(&b, "  Bid/Quote No.:  %s\n", q.QuoteNumber)
	fmt.Fprintf(&b, "  Date:           %s\n\n", q.Date)
	b.WriteString(rule("=", 78) + "\n\n")

	b.WriteString("1. SCOPE OF WORK (EXECUTIVE SUMMARY)\n" + section + "\n\n")
	fmt.Fprintf(&b, "   %s proposes to furnish and install external HVAC and mechanical\n", company)
	b.WriteString("   insulation as outlined in this bid. This proposal covers the following scope:\n\n")
	for _, line := range []string{
		"External duct wrap and ductwork insulation (supply, return, exhaust, OA)",
		"HVAC piping insulation (chilled water, hot water, condenser water, steam,\n     condensate) with specified jacketing and vapor barrier",
		"Equipment insulation (AHUs, FCUs, boilers, chillers, tanks) where specified",
		"Weatherproofing and jacketing for exterior systems (aluminum or PVC as specified)",
	} {
		fmt.Fprintf(&b, "   * %s\n", line)
	}
	b.WriteString("\n   Exclusions (not included in this bid):\n")
	for _, line := range []string{
		"Duct liner and internal acoustic liner",
		"Waste, sanitary, or domestic plumbing insulation",
		"Fire sprinkler piping (non-mechanical)",
		"Any scope not explicitly listed above",
	} {
		fmt.Fprintf(&b, "   * %s\n", line)
	}
	b.WriteString("\n")
	if opts.ExclusionSummary != "" {
		fmt.Fprintf(&b, "   Scope filter applied to project documents:\n   %s\n\n", opts.ExclusionSummary)
	}
	fmt.Fprintf(&b, "   Total bid reflects materials, labor, and %.0f%% contingency.\n\n", q.ContingencyPercent)

	b.WriteString("2. FINANCIAL BREAKDOWN\n" + section + "\n\n")
	b.WriteString("   MATERIALS BY CATEGORY\n" + divider + "\n")
	totals := q.CategoryTotals()
	cats := make([]pricing.Category, 0, len(totals))
	for c := range totals {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if totals[cats[i]] != totals[cats[j]] {
			return totals[cats[i]] > totals[cats[j]]
		}
		return cats[i] < cats[j]
	})
	for _, c := range cats {
		fmt.Fprintf(&b, "   %-45s %13s\n", CategoryTitle(c), FormatUSD(totals[c]))
	}
	fmt.Fprintf(&b, "\n   %-45s %13s\n\n", "Materials Subtotal", FormatUSD(q.MaterialTotal()))
	b.WriteString("   LABOR\n" + divider + "\n")
	fmt.Fprintf(&b, "   %-45s %13s\n\n",
		fmt.Sprintf("Labor: %.1f hours @ %s/hr", q.LaborHours, FormatUSD(q.LaborRate)), FormatUSD(q.LaborCost()))
	b.WriteString("   SUMMARY\n" + divider + "\n")
	fmt.Fprintf(&b, "   %-45s %13s\n", "Materials", FormatUSD(q.MaterialTotal()))
	fmt.Fprintf(&b, "   %-45s %13s\n", "Labor", FormatUSD(q.LaborCost()))
	fmt.Fprintf(&b, "   %-45s %13s\n", "Subtotal", FormatUSD(q.Subtotal))
	fmt.Fprintf(&b, "   %-45s %13s\n", fmt.Sprintf("Contingency (%.0f%%)", q.ContingencyPercent), FormatUSD(q.ContingencyAmount()))
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "   %-45s %13s\n\n", "TOTAL BID", FormatUSD(q.Total()))

	b.WriteString("3. MATERIAL SCHEDULE (LINE ITEMS)\n" + section + "\n\n")
	fmt.Fprintf(&b, "   %-50s %10s %-6s %12s\n", "Description", "Qty", "Unit", "Total")
	b.WriteString(divider + "\n")
	for _, it := range q.Materials {
		fmt.Fprintf(&b, "   %-50s %10.2f %-6s %12s\n", it.Description, it.Quantity, it.Unit, FormatUSD(it.TotalPrice))
	}
	b.WriteString("\n")

	b.WriteString("4. TERMS AND NOTES\n" + section + "\n\n")
	for i, n := range q.Notes {
		fmt.Fprintf(&b, "   %d. %s\n", i+1, n)
	}
	b.WriteString("\n   This bid is valid for 30 days from the date of issue. Work shall be performed\n")
	b.WriteString("   in accordance with project specifications and applicable codes. Final quantities\n")
	b.WriteString("   subject to field verification.\n\n")

	b.WriteString(rule("=", 78) + "\n")
	fmt.Fprintf(&b, "  %s\n  %s\n", company, scopeDesc)
	b.WriteString(rule("=", 78) + "\n")
	return b.String()
}

// CategoryTitle renders a category for headings ("accessories" -> "Accessories").
func CategoryTitle(c pricing.Category) string {
	s := strings.ReplaceAll(string(c), "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func trimFloat(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
