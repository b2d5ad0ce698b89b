package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/export"
)

func newExportCommand(o *options) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <takeoff>",
		Short: "Write the quote as an XLSX workbook or a PDF bid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "xlsx" && format != "pdf" {
				return fmt.Errorf("unknown export format %q (want xlsx or pdf)", format)
			}
			j, err := o.run(args[0])
			if err != nil {
				return err
			}

			var b []byte
			switch format {
			case "xlsx":
				b, err = export.Workbook(j.quote)
			case "pdf":
				b, err = export.PDF(j.quote, o.bidOptions(j))
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
			}
			if err := writeOutput(cmd.OutOrStdout(), out, b); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Quote %s exported to %s\n", j.quote.QuoteNumber, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "export format: xlsx or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: takeoff name with the format extension)")
	return cmd
}
