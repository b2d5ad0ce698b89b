// Package cli implements the estimate command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Config is the optional JSON file passed with --config.
//
//	{
//	  "pricebook": "prices.json",
//	  "markup": 1.15,
//	  "labor_rate": 70,
//	  "contingency_percent": 10,
//	  "quote_numbers": "snowflake",
//	  "node_id": 3,
//	  "company_name": "Guaranteed Insulation Inc.",
//	  "scope_filter": true
//	}
type Config struct {
	Pricebook          string   `json:"pricebook"`
	Markup             *float64 `json:"markup"`
	LaborRate          *float64 `json:"labor_rate"`
	ContingencyPercent *float64 `json:"contingency_percent"`
	QuoteNumbers       string   `json:"quote_numbers"`
	NodeID             int64    `json:"node_id"`
	CompanyName        string   `json:"company_name"`
	ScopeFilter        bool     `json:"scope_filter"`
}

// LoadConfig reads and parses a JSON config from the given path.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("json config parsing error: %w", err)
	}

	return &c, nil
}

// options are the resolved settings shared by every subcommand.
type options struct {
	cfgFile     string
	noColor     bool
	pricebook   string
	markup      float64
	laborRate   float64
	contingency float64
	numbers     string
	nodeID      int64
	company     string
	scopeFilter bool
	// changed reports whether a flag was set on the command line.
	changed func(name string) bool
}

// NewRootCommand builds the estimate command tree.
func NewRootCommand() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "estimate",
		Short:         "Estimate HVAC mechanical insulation jobs",
		Long:          "Estimate prices takeoff documents of duct and pipe runs against insulation specifications and produces quotes, material lists and bid packages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			o.changed = cmd.Flags().Changed
			if o.noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
				color.NoColor = true
			}
			if o.cfgFile == "" {
				return nil
			}
			cfg, err := LoadConfig(o.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config from %s: %w", o.cfgFile, err)
			}
			o.apply(cmd, cfg)
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&o.cfgFile, "config", "", "path to config file (config.json)")
	f.BoolVar(&o.noColor, "no-color", false, "disable ANSI color output")
	f.StringVar(&o.pricebook, "pricebook", "", "price book JSON file (default: built-in prices)")
	f.Float64Var(&o.markup, "markup", 1.0, "material markup multiplier")
	f.Float64Var(&o.laborRate, "labor-rate", 65, "labor rate in dollars per hour")
	f.Float64Var(&o.contingency, "contingency", 10, "contingency percent")
	f.StringVar(&o.numbers, "numbers", "timestamp", "quote numbering: timestamp, uuid or snowflake")
	f.Int64Var(&o.nodeID, "node-id", 1, "snowflake node id")
	f.StringVar(&o.company, "company", "", "company name on bid packages")
	f.BoolVar(&o.scopeFilter, "scope-filter", false, "drop out-of-scope specifications and measurements")

	root.AddCommand(
		newQuoteCommand(o),
		newMaterialsCommand(o),
		newBidCommand(o),
		newValidateCommand(o),
		newPricebookCommand(o),
		newMeasureCommand(),
		newExportCommand(o),
	)
	return root
}

// apply copies config values for flags the user did not set explicitly.
func (o *options) apply(cmd *cobra.Command, c *Config) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	if c.Pricebook != "" && !changed("pricebook") {
		o.pricebook = c.Pricebook
	}
	if c.Markup != nil && !changed("markup") {
		o.markup = *c.Markup
	}
	if c.LaborRate != nil && !changed("labor-rate") {
		o.laborRate = *c.LaborRate
	}
	if c.ContingencyPercent != nil && !changed("contingency") {
		o.contingency = *c.ContingencyPercent
	}
	if c.QuoteNumbers != "" && !changed("numbers") {
		o.numbers = c.QuoteNumbers
	}
	if c.NodeID != 0 && !changed("node-id") {
		o.nodeID = c.NodeID
	}
	if c.CompanyName != "" && !changed("company") {
		o.company = c.CompanyName
	}
	if c.ScopeFilter && !changed("scope-filter") {
		o.scopeFilter = true
	}
}

// Execute runs the command tree and reports the error in red.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
