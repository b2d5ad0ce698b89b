package quote

import (
	"fmt"
	"time"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricing"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

// Assembler builds quotes. It holds no per-quote state and may be shared.
type Assembler struct {
	Book     *pricebook.PriceBook
	Rates    pricing.LaborRates
	Numberer Numberer
	Now      func() time.Time
}

// NewAssembler returns an assembler with default labor rates and the wall
// clock. A nil numberer means timestamp-only quote numbers.
func NewAssembler(book *pricebook.PriceBook, numberer Numberer) *Assembler {
	if numberer == nil {
		numberer = TimestampNumberer{}
	}
	return &Assembler{
		Book:     book,
		Rates:    pricing.DefaultLaborRates,
		Numberer: numberer,
		Now:      time.Now,
	}
}

// Assemble prices measurements against specs and rolls the result into a
// quote. warnings are carried into the quote notes after the job notes.
func (a *Assembler) Assemble(p Params, specs []takeoff.Specification, measurements []takeoff.Measurement, warnings []string) (Quote, error) {
	if err := p.Validate(); err != nil {
		return Quote{}, err
	}

	calc := pricing.NewCalculator(a.Book, p.Markup)
	items, unmatched := calc.Materials(measurements, specs)

	warns := append([]string(nil), warnings...)
	for _, m := range unmatched {
		warns = append(warns, fmt.Sprintf("%s: no %s specification found; item not priced", m.ItemID, m.SystemType))
	}

	labor := pricing.EstimateLabor(items, a.Rates, p.LaborRate)
	subtotal := pricing.MaterialTotal(items) + labor.Cost

	now := a.now()
	number := a.numberer().Next(now)

	return Quote{
		ProjectName:        p.ProjectName,
		QuoteNumber:        number,
		Date:               now.Format("2006-01-02"),
		CreatedAt:          now,
		Measurements:       measurements,
		Specifications:     specs,
		Materials:          items,
		LaborHours:         labor.Hours,
		LaborRate:          labor.Rate,
		Subtotal:           subtotal,
		ContingencyPercent: p.ContingencyPercent,
		Notes:              Notes(specs, measurements, warns),
		MaterialList:       Consolidate(items),
		MarkupMultiplier:   p.Markup,
		Alternatives:       Alternatives(calc, measurements, specs),
		Warnings:           warns,
	}, nil
}

// AssembleBatch assembles an ingested batch, carrying its warnings.
func (a *Assembler) AssembleBatch(p Params, b takeoff.Batch) (Quote, error) {
	return a.Assemble(p, b.Specifications, b.Measurements, b.Warnings)
}

// AssembleDocument ingests a takeoff document and assembles it. Parameters
// carried by the document override base.
func (a *Assembler) AssembleDocument(base Params, doc takeoff.Document) (Quote, error) {
	return a.AssembleBatch(base.WithDocument(doc), doc.Ingest())
}

func (a *Assembler) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Assembler) numberer() Numberer {
	if a.Numberer == nil {
		return TimestampNumberer{}
	}
	return a.Numberer
}
