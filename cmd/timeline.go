package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/landscope/internal/timeline"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Summarize the grid at every timeline checkpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("timeline"); err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		cps, err := loadCheckpoints()
		if err != nil {
			return err
		}
		op, _ := timeline.Operational(cps)

		snaps := timeline.Build(newGridCache(reg).Grid, cps)
		formatTimeline(cmd.OutOrStdout(), snaps, op)
		return nil
	},
}

// formatTimeline writes one row per snapshot, marking the operational one.
func formatTimeline(out io.Writer, snaps []timeline.Snapshot, operational timeline.Checkpoint) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHECKPOINT\tYEAR\tRECOVERY\tPHASE\tCELLS\tMEAN_TOX\tMEAN_PERSIST\tOPS")
	_, _ = fmt.Fprintln(w, "----------\t----\t--------\t-----\t-----\t--------\t------------\t---")

	for _, s := range snaps {
		ops := ""
		if s.Checkpoint == operational {
			ops = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%.2f\t%.1f\t%s\n",
			s.Label,
			s.Year,
			s.RecoveryFactor,
			s.Phase,
			s.Summary.Cells,
			s.Summary.MeanToxicity,
			s.Summary.MeanPersistence,
			ops,
		)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(timelineCmd)
}
