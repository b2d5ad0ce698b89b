package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/db"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/migrations"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/seed"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/store"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

const (
	testEmail    = "admin@insulation.test"
	testPassword = "s3cret"
)

const clinicTakeoff = `{
  "project_name": "Clinic",
  "specifications": [
    {"system_type": "duct", "size_range": "all", "thickness": 1.5, "material": "fiberglass", "facing": "FSK", "location": "indoor"}
  ],
  "measurements": [
    {"item_id": "D-1", "system_type": "duct", "size": "12x18", "length": 100, "fittings": {"elbow": 2}}
  ]
}`

func newTestServer(t *testing.T) *server {
	t.Helper()

	database, err := db.Open(db.Memory)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(database, seed.Config{AdminEmail: testEmail, AdminPassword: testPassword}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return newServer(database, newAuthService(database, "test-secret"), quote.UUIDNumberer{}, quote.DefaultParams(), "")
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func createClinicQuote(t *testing.T, h http.Handler) map[string]any {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/estimates", "application/json", clinicTakeoff)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /estimates status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode estimate: %v", err)
	}
	if loc := rr.Header().Get("Location"); loc != "/quotes/"+got["quote_number"].(string) {
		t.Fatalf("Location = %q", loc)
	}
	return got
}

func TestCreateEstimateAndRenderStoredQuote(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()

	got := createClinicQuote(t, h)
	number := got["quote_number"].(string)
	if total := got["total"].(float64); quote.FormatUSD(total) != "$17,675.36" {
		t.Fatalf("total = %v", total)
	}

	text := do(t, h, http.MethodGet, "/quotes/"+number+"/text", "", "")
	if text.Code != http.StatusOK || !strings.Contains(text.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("text status/type = %d/%q", text.Code, text.Header().Get("Content-Type"))
	}
	for _, want := range []string{"Project: Clinic", number, "$17,675.36"} {
		if !strings.Contains(text.Body.String(), want) {
			t.Fatalf("text report missing %q:\n%s", want, text.Body.String())
		}
	}

	tests := []struct {
		path, contentType, contains string
	}{
		{"/quotes/" + number, "application/json", `"project_name":"Clinic"`},
		{"/quotes/" + number + "/materials", "text/plain", "MATERIAL ORDER LIST"},
		{"/quotes/" + number + "/bid", "text/plain", "GUARANTEED INSULATION INC."},
		{"/quotes/" + number + "/xlsx", "spreadsheetml", "PK"},
		{"/quotes/" + number + "/pdf", "application/pdf", "%PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, tt.path, "", "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Header().Get("Content-Type"), tt.contentType) {
				t.Fatalf("Content-Type = %q, want %q", rr.Header().Get("Content-Type"), tt.contentType)
			}
			if !bytes.Contains(rr.Body.Bytes(), []byte(tt.contains)) {
				t.Fatalf("body missing %q", tt.contains)
			}
		})
	}
}

func TestCreateEstimateAcceptsYAMLAndQueryParams(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()

	doc := `project_name: Boiler Room
specifications:
  - system_type: pipe
    size_range: all
    thickness: 1
    material: elastomeric
measurements:
  - item_id: P-1
    system_type: pipe
    size: 2"
    length: 40
`
	rr := do(t, h, http.MethodPost, "/estimates?contingency_percent=0&labor_rate=80", "application/yaml", doc)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var q quote.Quote
	if err := json.Unmarshal(rr.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.ProjectName != "Boiler Room" || q.ContingencyPercent != 0 || q.LaborRate != 80 {
		t.Fatalf("quote = %+v", q)
	}
}

func TestCreateEstimateRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()

	tests := []struct {
		name, target, body string
	}{
		{"bad json", "/estimates", "{"},
		{"markup below one", "/estimates?markup=0.5", clinicTakeoff},
		{"non numeric labor", "/estimates?labor_rate=cheap", clinicTakeoff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tt.target, "application/json", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestQuotesListFiltersAndOrders(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()

	createClinicQuote(t, h)
	other := strings.Replace(clinicTakeoff, `"Clinic"`, `"Warehouse"`, 1)
	if rr := do(t, h, http.MethodPost, "/estimates", "application/json", other); rr.Code != http.StatusCreated {
		t.Fatalf("POST /estimates status = %d", rr.Code)
	}

	rr := do(t, h, http.MethodGet, "/quotes", "", "")
	var all []store.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(all) != 2 || all[0].ProjectName != "Warehouse" {
		t.Fatalf("list = %+v", all)
	}

	rr = do(t, h, http.MethodGet, "/quotes?q="+url.QueryEscape("clin"), "", "")
	var filtered []store.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ProjectName != "Clinic" {
		t.Fatalf("filtered = %+v", filtered)
	}
}

func TestHandleQuoteTextWithRouteContext(t *testing.T) {
	srv := newTestServer(t)
	q, err := quote.NewAssembler(pricebook.Default(), quote.TimestampNumberer{}).Assemble(
		quote.Params{ProjectName: "Snapshot", Markup: 1, LaborRate: 65, ContingencyPercent: 10}, nil, nil, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if err := srv.store.Save(q); err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/quotes/"+q.QuoteNumber+"/text", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("number", q.QuoteNumber)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	srv.handleQuoteText(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Project: Snapshot") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestMissingQuoteIs404(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv.routes(), http.MethodGet, "/quotes/nope/pdf", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	body := `{
  "specifications": [{"system_type": "pipe", "size_range": "all", "thickness": 1, "material": "fiberglass", "location": "outdoor"}],
  "measurements": [{"item_id": "D-1", "system_type": "duct", "size": "12x18", "length": 10}]
}`
	rr := do(t, srv.routes(), http.MethodPost, "/validate", "application/json", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got struct {
		Review struct {
			Status   string   `json:"status"`
			Warnings []string `json:"warnings"`
		} `json:"review"`
		CrossReference struct {
			Status string `json:"status"`
		} `json:"cross_reference"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Review.Status != "warning" || len(got.Review.Warnings) == 0 {
		t.Fatalf("review = %+v", got.Review)
	}
	if got.CrossReference.Status != "issues_found" {
		t.Fatalf("cross status = %q", got.CrossReference.Status)
	}
}

func TestAdminPricesRequireLogin(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	update := `{"fiberglass_1.5": 5.10}`

	if rr := do(t, h, http.MethodPost, "/admin/prices", "application/json", update); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rr.Code)
	}

	form := url.Values{"email": {testEmail}, "password": {"wrong"}}
	if rr := do(t, h, http.MethodPost, "/login", "application/x-www-form-urlencoded", form.Encode()); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rr.Code)
	}

	form.Set("password", testPassword)
	login := do(t, h, http.MethodPost, "/login", "application/x-www-form-urlencoded", form.Encode())
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", login.Code, login.Body.String())
	}
	cookies := login.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != sessionCookieName {
		t.Fatalf("session cookie not set: %v", cookies)
	}

	if rr := do(t, h, http.MethodPost, "/admin/prices", "application/json", `{"mastic": -1}`, cookies...); rr.Code != http.StatusBadRequest {
		t.Fatalf("negative price status = %d, want 400", rr.Code)
	}
	rr := do(t, h, http.MethodPost, "/admin/prices", "application/json", update, cookies...)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rr.Code, rr.Body.String())
	}

	prices := do(t, h, http.MethodGet, "/prices", "", "")
	var got map[string]float64
	if err := json.Unmarshal(prices.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode prices: %v", err)
	}
	if got["fiberglass_1.5"] != 5.10 {
		t.Fatalf("fiberglass_1.5 = %v, want 5.10", got["fiberglass_1.5"])
	}
	if len(got) != pricebook.Default().Len() {
		t.Fatalf("price count = %d, want %d", len(got), pricebook.Default().Len())
	}

	logout := do(t, h, http.MethodPost, "/logout", "", "", cookies...)
	if logout.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", logout.Code)
	}
}

func TestSessionValueRejectsTampering(t *testing.T) {
	a := newAuthService(nil, "secret")
	v := a.createSessionValue(testEmail)
	if email, ok := a.verifySessionValue(v); !ok || email != testEmail {
		t.Fatalf("verify = %q, %v", email, ok)
	}
	for _, bad := range []string{"", "abc", v + "00", "x." + strings.SplitN(v, ".", 2)[1], v + ".extra"} {
		if _, ok := a.verifySessionValue(bad); ok {
			t.Fatalf("tampered value %q accepted", bad)
		}
	}
	if _, ok := newAuthService(nil, "other").verifySessionValue(v); ok {
		t.Fatal("value signed with another secret accepted")
	}
}

func TestParseParams(t *testing.T) {
	base := quote.DefaultParams()
	tests := []struct {
		query   string
		want    quote.Params
		wantErr bool
	}{
		{"", base, false},
		{"markup=1.2&labor_rate=70&contingency_percent=5&project_name=Lab", quote.Params{ProjectName: "Lab", Markup: 1.2, LaborRate: 70, ContingencyPercent: 5}, false},
		{"markup=abc", quote.Params{}, true},
		{"labor_rate=0", quote.Params{}, true},
		{"contingency_percent=-1", quote.Params{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/estimates?"+tt.query, nil)
			got, err := parseParams(req, base)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&takeoff.ValidationError{Item: "D-1", Field: "length", Reason: "must be greater than zero"}, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", &pricebook.ConfigurationError{Err: errors.New("bad")}), http.StatusBadRequest},
		{&quote.ParamError{Field: "markup", Value: 0.5, Reason: "must be at least 1.0"}, http.StatusBadRequest},
		{fmt.Errorf("quote x: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("save quote x: %w", store.ErrDuplicate), http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// sameNumber hands out one quote number, as timestamp numbering does for
// estimates created within the same minute.
type sameNumber string

func (n sameNumber) Next(time.Time) string { return string(n) }

func TestCreateEstimateDoesNotOverwriteTakenNumber(t *testing.T) {
	srv := newTestServer(t)
	srv.numberer = sameNumber("Q20260314-0905")
	h := srv.routes()

	createClinicQuote(t, h)
	other := strings.Replace(clinicTakeoff, `"Clinic"`, `"Warehouse"`, 1)
	rr := do(t, h, http.MethodPost, "/estimates", "application/json", other)
	if rr.Code != http.StatusConflict {
		t.Fatalf("second estimate status = %d, want 409; body = %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/quotes/Q20260314-0905", "", "")
	var stored map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if stored["project_name"] != "Clinic" {
		t.Fatalf("stored project = %v, want Clinic", stored["project_name"])
	}
}
