package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

func newMeasureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Edit the measurements of a takeoff document",
	}
	cmd.AddCommand(newMeasureAddCommand())
	return cmd
}

// measureFlags hold a measurement given on the command line.
type measureFlags struct {
	id        string
	system    string
	size      string
	length    string
	location  string
	elevation int
	fittings  map[string]int
	project   string
	noPrompt  bool
}

func newMeasureAddCommand() *cobra.Command {
	mf := &measureFlags{}
	cmd := &cobra.Command{
		Use:   "add <takeoff>",
		Short: "Add a manual measurement, prompting for fields not given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := loadOrNew(path)
			if err != nil {
				return err
			}
			if mf.project != "" {
				doc.ProjectName = mf.project
			}

			rec := mf.record()
			if mf.system == "" || mf.size == "" || mf.length == "" {
				if mf.noPrompt || !isInteractiveAllowed() {
					return fmt.Errorf("--system, --size and --length are required when not running interactively")
				}
				rec, err = promptMeasurement(rec)
				if err != nil {
					if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
						fmt.Fprintln(cmd.OutOrStdout(), "Measurement not added.")
						return nil
					}
					return err
				}
			}

			m, warns, err := takeoff.MeasurementFromRecord(len(doc.Measurements), rec)
			if err != nil {
				return err
			}
			for _, existing := range doc.Measurements {
				if strings.TrimSpace(existing.ItemID) == m.ItemID {
					warns = append(warns, fmt.Sprintf("%s: duplicate item id - verify", m.ItemID))
					break
				}
			}
			rec.ItemID = m.ItemID
			doc.Measurements = append(doc.Measurements, rec)
			if err := takeoff.WriteFile(path, doc); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, warn := range warns {
				warnColor.Fprintf(w, "warning: %s\n", warn)
			}
			okColor.Fprintf(w, "Added %s: %s %s, %s LF to %s\n",
				m.ItemID, m.SystemType, m.Size, takeoff.FormatFloat(m.LengthFeet), path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&mf.id, "id", "", "item id (default MANUAL_n)")
	f.StringVar(&mf.system, "system", "", "system type: duct or pipe")
	f.StringVar(&mf.size, "size", "", "size, e.g. 12x18 or 2\"")
	f.StringVar(&mf.length, "length", "", "length in linear feet")
	f.StringVar(&mf.location, "location", "", "location description")
	f.IntVar(&mf.elevation, "elevation", 0, "number of elevation changes")
	f.StringToIntVar(&mf.fittings, "fitting", nil, "fitting counts, e.g. --fitting elbow=2,tee=1")
	f.StringVar(&mf.project, "project", "", "set the document project name")
	f.BoolVar(&mf.noPrompt, "no-prompt", false, "never prompt for missing fields")
	return cmd
}

func (mf *measureFlags) record() takeoff.MeasurementRecord {
	rec := takeoff.MeasurementRecord{
		ItemID:     mf.id,
		SystemType: mf.system,
		Size:       mf.size,
		Length:     takeoff.Number(mf.length),
		Location:   mf.location,
	}
	if mf.elevation != 0 {
		rec.ElevationChanges = takeoff.Number(strconv.Itoa(mf.elevation))
	}
	if len(mf.fittings) > 0 {
		rec.Fittings = make(map[string]takeoff.Number, len(mf.fittings))
		for k, v := range mf.fittings {
			rec.Fittings[k] = takeoff.Number(strconv.Itoa(v))
		}
	}
	return rec
}

func loadOrNew(path string) (takeoff.Document, error) {
	doc, err := takeoff.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return takeoff.Document{}, nil
	}
	return doc, err
}

// isInteractiveAllowed reports whether stdin and stdout are terminals suitable
// for prompting.
func isInteractiveAllowed() bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	return term != "" && term != "dumb"
}

func validateNumber(positive bool) promptui.ValidateFunc {
	return func(s string) error {
		if strings.TrimSpace(s) == "" && !positive {
			return nil
		}
		f, err := takeoff.Number(s).Float()
		if err != nil {
			return err
		}
		if positive && f <= 0 {
			return fmt.Errorf("must be greater than zero")
		}
		if f < 0 {
			return fmt.Errorf("must not be negative")
		}
		return nil
	}
}

func promptMeasurement(rec takeoff.MeasurementRecord) (takeoff.MeasurementRecord, error) {
	if rec.SystemType == "" {
		sel := promptui.Select{
			Label:  "System type",
			Items:  []string{string(takeoff.SystemDuct), string(takeoff.SystemPipe)},
			Stdout: noBellStdout{},
		}
		_, v, err := sel.Run()
		if err != nil {
			return rec, err
		}
		rec.SystemType = v
	}
	if rec.Size == "" {
		p := promptui.Prompt{
			Label:  "Size (e.g. 12x18 or 2\")",
			Stdout: noBellStdout{},
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("size is required")
				}
				return nil
			},
		}
		v, err := p.Run()
		if err != nil {
			return rec, err
		}
		rec.Size = v
	}
	if rec.Length == "" {
		p := promptui.Prompt{Label: "Length (LF)", Stdout: noBellStdout{}, Validate: validateNumber(true)}
		v, err := p.Run()
		if err != nil {
			return rec, err
		}
		rec.Length = takeoff.Number(v)
	}
	if rec.Location == "" {
		p := promptui.Prompt{Label: "Location (optional)", Stdout: noBellStdout{}}
		v, err := p.Run()
		if err != nil {
			return rec, err
		}
		rec.Location = v
	}
	if rec.Fittings == nil {
		rec.Fittings = map[string]takeoff.Number{}
		for _, kind := range []string{"elbow", "tee", "valve", "transition"} {
			p := promptui.Prompt{Label: fmt.Sprintf("Number of %ss", kind), Default: "0", Stdout: noBellStdout{}, Validate: validateNumber(false)}
			v, err := p.Run()
			if err != nil {
				return rec, err
			}
			if v = strings.TrimSpace(v); v != "" && v != "0" {
				rec.Fittings[kind] = takeoff.Number(v)
			}
		}
		if len(rec.Fittings) == 0 {
			rec.Fittings = nil
		}
	}
	return rec, nil
}
