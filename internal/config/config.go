package config

import (
	"log"
	"os"
	"strconv"
)

const (
	defaultDBPath       = "./estimator.db"
	defaultPort         = "8080"
	defaultQuoteNumbers = "uuid"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	AppEnv        string

	// PricebookPath, when set, replaces the built-in default price table.
	PricebookPath      string
	Markup             float64
	LaborRate          float64
	ContingencyPercent float64
	// QuoteNumbers selects the numbering scheme: timestamp, uuid or snowflake.
	QuoteNumbers string
	NodeID       int64
	// IntakeDir is watched for takeoff documents; empty disables the watcher.
	IntakeDir string
	// CompanyName heads bid packages; empty uses the default letterhead.
	CompanyName string
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "" || c.AppEnv == "dev" || c.AppEnv == "development"
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Local development only; production injects real environment variables.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: load .env: %v", err)
	}

	cfg := Config{
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		DBPath:             getenv("DB_PATH", defaultDBPath),
		Port:               getenv("PORT", defaultPort),
		AppEnv:             os.Getenv("APP_ENV"),
		PricebookPath:      os.Getenv("PRICEBOOK_PATH"),
		Markup:             getenvFloat("MARKUP", 1.0),
		LaborRate:          getenvFloat("LABOR_RATE", 65),
		ContingencyPercent: getenvFloat("CONTINGENCY_PERCENT", 10),
		QuoteNumbers:       getenv("QUOTE_NUMBERS", defaultQuoteNumbers),
		NodeID:             getenvInt("NODE_ID", 1),
		IntakeDir:          os.Getenv("INTAKE_DIR"),
		CompanyName:        os.Getenv("COMPANY_NAME"),
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("warning: %s=%q is not a number, using %g", key, v, def)
		return def
	}
	return f
}

func getenvInt(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("warning: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}
