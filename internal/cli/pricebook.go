package cli

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
)

func newPricebookCommand(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "pricebook",
		Short: "Show the active price book or write it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := o.book()
			if err != nil {
				return err
			}
			if out != "" {
				var buf bytes.Buffer
				if err := book.WriteJSON(&buf); err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), out, buf.Bytes()); err != nil {
					return err
				}
				okColor.Fprintf(cmd.OutOrStdout(), "Wrote %d prices to %s\n", book.Len(), out)
				return nil
			}

			w := cmd.OutOrStdout()
			heading.Fprintf(w, "PRICE BOOK (%d items, markup %.2fx)\n", book.Len(), o.markup)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, key := range book.Keys() {
				price, _ := book.Lookup(key)
				fmt.Fprintf(tw, "%s\t%s\n", key, quote.FormatUSD(price))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the price book as JSON to a file")
	return cmd
}
