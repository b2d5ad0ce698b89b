package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/config"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/db"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/intake"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/migrations"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/seed"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/store"
)

type server struct {
	auth     *authService
	store    *store.Store
	numberer quote.Numberer
	params   quote.Params
	company  string
}

func newServer(database *sql.DB, auth *authService, numberer quote.Numberer, params quote.Params, company string) *server {
	return &server{
		auth:     auth,
		store:    store.New(database),
		numberer: numberer,
		params:   params,
		company:  company,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Post("/estimates", s.handleCreateEstimate)
	r.Post("/validate", s.handleValidate)
	r.Get("/quotes", s.handleQuotesList)
	r.Route("/quotes/{number}", func(r chi.Router) {
		r.Get("/", s.handleQuoteDetail)
		r.Get("/text", s.handleQuoteText)
		r.Get("/materials", s.handleQuoteMaterials)
		r.Get("/bid", s.handleQuoteBid)
		r.Get("/xlsx", s.handleQuoteXLSX)
		r.Get("/pdf", s.handleQuotePDF)
	})
	r.Get("/prices", s.handlePrices)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/admin/prices", s.handleAdminPrices)
	})
	return r
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	seedCfg := seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword}
	if cfg.PricebookPath != "" {
		book, err := pricebook.Load(cfg.PricebookPath)
		if err != nil {
			log.Fatalf("failed to load price book: %v", err)
		}
		seedCfg.PriceBook = book
	}
	stats, err := seed.Run(database, seedCfg)
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	log.Printf("seed: %d inserts, %d updates, %d deletes", stats.Inserts, stats.Updates, stats.Deletes)

	numberer, err := quote.NumbererFor(cfg.QuoteNumbers, cfg.NodeID)
	if err != nil {
		log.Fatalf("failed to configure quote numbers: %v", err)
	}
	params := quote.Params{
		Markup:             cfg.Markup,
		LaborRate:          cfg.LaborRate,
		ContingencyPercent: cfg.ContingencyPercent,
	}
	if err := params.Validate(); err != nil {
		log.Fatalf("invalid pricing configuration: %v", err)
	}

	srv := newServer(database, newAuthService(database, cfg.SessionSecret), numberer, params, cfg.CompanyName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IntakeDir != "" {
		if err := srv.startIntake(ctx, cfg.IntakeDir); err != nil {
			log.Fatalf("failed to start intake watcher: %v", err)
		}
	} else {
		log.Print("intake watcher disabled")
	}

	addr := ":" + cfg.Port
	httpSrv := &http.Server{Addr: addr, Handler: srv.routes()}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Shutdown(context.Background())
	}()

	log.Printf("listening on %s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server stopped: %v", err)
	}
}

// startIntake quotes takeoff files dropped into dir with the stored prices.
func (s *server) startIntake(ctx context.Context, dir string) error {
	a, err := s.assembler()
	if err != nil {
		return err
	}
	w := intake.New(dir, a, s.params, s.store)
	n, err := w.Backfill()
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("intake: backfilled %d takeoff(s)", n)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	log.Printf("intake: watching %s", dir)
	return nil
}

// assembler builds an assembler over the current stored prices.
func (s *server) assembler() (*quote.Assembler, error) {
	book, err := s.store.PriceBook()
	if err != nil {
		return nil, err
	}
	return quote.NewAssembler(book, s.numberer), nil
}
