package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/export"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/review"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/store"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

const maxBodyBytes = 4 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps engine errors to HTTP statuses.
func statusFor(err error) int {
	var verr *takeoff.ValidationError
	var cerr *pricebook.ConfigurationError
	var perr *quote.ParamError
	switch {
	case errors.As(err, &verr), errors.As(err, &cerr), errors.As(err, &perr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		msg = "internal error"
	}
	writeJSONError(w, status, msg)
}

// decodeTakeoff reads a takeoff document in JSON or, when the content type
// says so, YAML.
func decodeTakeoff(w http.ResponseWriter, r *http.Request) (takeoff.Document, error) {
	format := takeoff.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = takeoff.FormatYAML
	}
	return takeoff.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
}

// parseParams applies markup, labor_rate and contingency_percent query
// values over base.
func parseParams(r *http.Request, base quote.Params) (quote.Params, error) {
	p := base
	fields := []struct {
		name string
		dst  *float64
	}{
		{"markup", &p.Markup},
		{"labor_rate", &p.LaborRate},
		{"contingency_percent", &p.ContingencyPercent},
	}
	q := r.URL.Query()
	for _, f := range fields {
		raw := strings.TrimSpace(q.Get(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return base, fmt.Errorf("%s must be a number", f.name)
		}
		*f.dst = v
	}
	if name := strings.TrimSpace(q.Get("project_name")); name != "" {
		p.ProjectName = name
	}
	return p, p.Validate()
}

func (s *server) handleCreateEstimate(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeTakeoff(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := parseParams(r, s.params.WithDocument(doc))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.ProjectName == "" {
		p.ProjectName = "Untitled Project"
	}

	a, err := s.assembler()
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := a.AssembleBatch(p, doc.Ingest())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Save(q); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", "/quotes/"+q.QuoteNumber)
	writeJSON(w, http.StatusCreated, q)
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeTakeoff(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	batch := doc.Ingest()
	writeJSON(w, http.StatusOK, struct {
		Review         review.Report         `json:"review"`
		CrossReference review.CrossReference `json:"cross_reference"`
		Warnings       []string              `json:"warnings"`
	}{
		Review:         review.ValidateRecords(doc.Specifications),
		CrossReference: review.Cross(batch.Specifications, batch.Measurements),
		Warnings:       batch.Warnings,
	})
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.List(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// loadQuote reads the stored snapshot named by the route.
func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (quote.Quote, bool) {
	q, err := s.store.Get(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, err)
		return quote.Quote{}, false
	}
	return q, true
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	if q, ok := s.loadQuote(w, r); ok {
		writeJSON(w, http.StatusOK, q)
	}
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	if q, ok := s.loadQuote(w, r); ok {
		writeText(w, quote.Text(q))
	}
}

func (s *server) handleQuoteMaterials(w http.ResponseWriter, r *http.Request) {
	if q, ok := s.loadQuote(w, r); ok {
		writeText(w, quote.MaterialOrderList(q))
	}
}

func (s *server) handleQuoteBid(w http.ResponseWriter, r *http.Request) {
	if q, ok := s.loadQuote(w, r); ok {
		writeText(w, quote.BidPackage(q, quote.BidOptions{CompanyName: s.company}))
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *server) handleQuoteXLSX(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	b, err := export.Workbook(q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", q.QuoteNumber+".xlsx", b)
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	b, err := export.PDF(q, quote.BidOptions{CompanyName: s.company})
	if err != nil {
		writeError(w, err)
		return
	}
	writeAttachment(w, "application/pdf", q.QuoteNumber+".pdf", b)
}

func (s *server) handlePrices(w http.ResponseWriter, r *http.Request) {
	book, err := s.store.PriceBook()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book.Prices())
}

// handleAdminPrices upserts a JSON object of key to price. The whole batch is
// checked before anything is written.
func (s *server) handleAdminPrices(w http.ResponseWriter, r *http.Request) {
	book, err := pricebook.Parse(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	if book.Len() == 0 {
		writeJSONError(w, http.StatusBadRequest, "no prices given")
		return
	}
	for _, key := range book.Keys() {
		price, _ := book.Lookup(key)
		if err := s.store.SetPrice(key, price); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": book.Len()})
}
