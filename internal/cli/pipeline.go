package cli

import (
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/scope"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

// job is a quoted takeoff document.
type job struct {
	doc   takeoff.Document
	quote quote.Quote
	scope *scope.Result
}

func (o *options) book() (*pricebook.PriceBook, error) {
	if o.pricebook == "" {
		return pricebook.Default(), nil
	}
	return pricebook.Load(o.pricebook)
}

func (o *options) params() quote.Params {
	return quote.Params{
		Markup:             o.markup,
		LaborRate:          o.laborRate,
		ContingencyPercent: o.contingency,
	}
}

func (o *options) bidOptions(j job) quote.BidOptions {
	opts := quote.BidOptions{CompanyName: o.company}
	if j.scope != nil {
		company := o.company
		if company == "" {
			company = quote.DefaultCompanyName
		}
		opts.ExclusionSummary = j.scope.Summary(company)
	}
	return opts
}

// explicit reapplies parameters given on the command line so they win over
// values carried in the takeoff document.
func (o *options) explicit(p quote.Params) quote.Params {
	if o.changed == nil {
		return p
	}
	if o.changed("markup") {
		p.Markup = o.markup
	}
	if o.changed("labor-rate") {
		p.LaborRate = o.laborRate
	}
	if o.changed("contingency") {
		p.ContingencyPercent = o.contingency
	}
	return p
}

// run loads a takeoff document and prices it.
func (o *options) run(path string) (job, error) {
	doc, err := takeoff.LoadFile(path)
	if err != nil {
		return job{}, err
	}
	book, err := o.book()
	if err != nil {
		return job{}, err
	}
	numberer, err := quote.NumbererFor(o.numbers, o.nodeID)
	if err != nil {
		return job{}, err
	}

	batch := doc.Ingest()
	j := job{doc: doc}
	if o.scopeFilter {
		r := scope.Filter(batch.Specifications, batch.Measurements)
		batch.Specifications, batch.Measurements = r.Specifications, r.Measurements
		j.scope = &r
	}

	p := o.explicit(o.params().WithDocument(doc))
	if p.ProjectName == "" {
		p.ProjectName = "Untitled Project"
	}
	j.quote, err = quote.NewAssembler(book, numberer).AssembleBatch(p, batch)
	if err != nil {
		return job{}, err
	}
	return j, nil
}
