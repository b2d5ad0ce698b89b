package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/review"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

func newValidateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <takeoff>",
		Short: "Review specifications and cross-check them against measurements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := takeoff.LoadFile(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			rep := review.ValidateRecords(doc.Specifications)
			printReport(w, rep)

			batch := doc.Ingest()
			cross := review.Cross(batch.Specifications, batch.Measurements)
			printCross(w, cross)

			if rep.Status == review.StatusError {
				return fmt.Errorf("specification review found %d error(s)", len(rep.Errors))
			}
			return nil
		},
	}
}

func statusColor(s string) func(format string, a ...interface{}) string {
	switch s {
	case string(review.StatusPass), string(review.CrossValidated):
		return okColor.Sprintf
	case string(review.StatusWarning): // review.CrossWarning has the same value
		return warnColor.Sprintf
	}
	return errColor.Sprintf
}

func printReport(w io.Writer, r review.Report) {
	heading.Fprintln(w, "SPECIFICATION REVIEW")
	fmt.Fprintf(w, "Status: %s\n", statusColor(string(r.Status))("%s", r.Status))
	fmt.Fprintln(w, r.Summary)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s %s\n", errColor.Sprint("error:"), e)
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "  %s %s\n", warnColor.Sprint("warning:"), e)
	}
	for _, e := range r.Recommendations {
		fmt.Fprintf(w, "  recommendation: %s\n", e)
	}
}

func printCross(w io.Writer, c review.CrossReference) {
	fmt.Fprintln(w)
	heading.Fprintln(w, "CROSS REFERENCE")
	fmt.Fprintf(w, "Status: %s\n", statusColor(string(c.Status))("%s", c.Status))
	fmt.Fprintf(w, "Matched: %d\n", len(c.Matched))
	for _, m := range c.MissingSpecs {
		fmt.Fprintf(w, "  %s %s: %s\n", errColor.Sprint("missing spec:"), m.MeasurementID, m.Reason)
	}
	for _, m := range c.MissingMeasurements {
		fmt.Fprintf(w, "  %s %s\n", warnColor.Sprint("no measurements:"), m.Reason)
	}
}
