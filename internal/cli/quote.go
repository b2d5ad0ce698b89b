package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
)

func newQuoteCommand(o *options) *cobra.Command {
	var out string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "quote <takeoff>",
		Short: "Price a takeoff document and print the customer quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := o.run(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				b, err := json.MarshalIndent(j.quote, "", "  ")
				if err != nil {
					return fmt.Errorf("encode quote: %w", err)
				}
				return writeOutput(cmd.OutOrStdout(), out, append(b, '\n'))
			}
			if err := writeOutput(cmd.OutOrStdout(), out, []byte(quote.Text(j.quote))); err != nil {
				return err
			}
			if out != "" {
				okColor.Fprintf(cmd.OutOrStdout(), "Quote %s written to %s (total %s)\n",
					j.quote.QuoteNumber, out, quote.FormatUSD(j.quote.Total()))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to a file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the quote as JSON")
	return cmd
}

func newMaterialsCommand(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "materials <takeoff>",
		Short: "Print the consolidated material order list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := o.run(args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, []byte(quote.MaterialOrderList(j.quote)))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the list to a file")
	return cmd
}

func newBidCommand(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "bid <takeoff>",
		Short: "Print the formal bid package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := o.run(args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, []byte(quote.BidPackage(j.quote, o.bidOptions(j))))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the bid package to a file")
	return cmd
}
