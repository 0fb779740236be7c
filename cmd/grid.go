package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/timeline"
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Generate the hazard grid for a year",
	Long:  "Tiles the territory and prints a summary of the generated hazard profiles, or the cells themselves with --json.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("grid"); err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		year, recovery, err := gridParams(cmd)
		if err != nil {
			return err
		}
		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = cfg.Grid.Workers
		}

		cells, err := grid.New(reg).GenerateParallel(cmd.Context(), year, recovery, workers)
		if err != nil {
			return eris.Wrap(err, "grid")
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cells)
		}
		formatSummary(out, timeline.Phase(year), grid.Summarize(cells))
		return nil
	},
}

// formatSummary writes a grid summary table to out.
func formatSummary(out io.Writer, phase string, s grid.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Year:\t%d\n", s.Year)
	_, _ = fmt.Fprintf(w, "Recovery factor:\t%d\n", s.RecoveryFactor)
	_, _ = fmt.Fprintf(w, "Phase:\t%s\n", phase)
	_, _ = fmt.Fprintf(w, "Cells:\t%d\n", s.Cells)
	_, _ = fmt.Fprintf(w, "Mean toxicity:\t%.2f\n", s.MeanToxicity)
	_, _ = fmt.Fprintf(w, "Mean persistence:\t%.1f months\n", s.MeanPersistence)
	_, _ = fmt.Fprintf(w, "Max persistence:\t%d months\n", s.MaxPersistence)

	_, _ = fmt.Fprintln(w, "\nTOXICITY\tCELLS")
	for t := grid.ToxicityLow; t <= grid.ToxicityCritical; t++ {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", t, s.ByToxicity[t.String()])
	}

	_, _ = fmt.Fprintln(w, "\nBRANCH\tCELLS")
	for _, b := range grid.Branches {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", b, s.ByBranch[b])
	}

	_, _ = fmt.Fprintln(w, "\nCONTAMINANT\tCELLS")
	for _, c := range grid.Contaminants {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c, s.ByContaminant[c])
	}
	_ = w.Flush()
}

func init() {
	addGridFlags(gridCmd)
	gridCmd.Flags().Int("workers", 0, "parallel row workers (default from config)")
	gridCmd.Flags().Bool("json", false, "print cells as JSON instead of a summary")
	rootCmd.AddCommand(gridCmd)
}
