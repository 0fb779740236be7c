package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/landscope/internal/access"
	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/grid"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a coordinate against the restricted zones",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("classify"); err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		pt := geo.Coordinate{Lat: lat, Lng: lng}

		res, inScope := access.FromRegistry(reg).Eligible(pt)

		year, recovery, err := gridParams(cmd)
		if err != nil {
			return err
		}
		var cell *grid.HazardProfile
		if c, ok := grid.CellAt(grid.New(reg).Generate(year, recovery), lat, lng); ok {
			cell = &c
		}

		formatClassification(cmd.OutOrStdout(), pt, res, inScope, cell)
		return nil
	},
}

// formatClassification writes an access result and the covering cell, if
// any, to out.
func formatClassification(out io.Writer, pt geo.Coordinate, res access.Result, inScope bool, cell *grid.HazardProfile) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Coordinate:\t%.5f, %.5f\n", pt.Lat, pt.Lng)
	_, _ = fmt.Fprintf(w, "Access:\t%s\n", res.Level)
	if res.ZoneID != "" {
		_, _ = fmt.Fprintf(w, "Zone:\t%s (%s)\n", res.ZoneName, res.ZoneID)
		_, _ = fmt.Fprintf(w, "Severity:\t%s\n", res.Severity)
	}
	_, _ = fmt.Fprintf(w, "Insight scope:\t%t\n", inScope)
	if cell != nil {
		_, _ = fmt.Fprintf(w, "Sector:\t%s (%s)\n", cell.SectorID, cell.ID)
		_, _ = fmt.Fprintf(w, "Toxicity:\t%s\n", cell.Toxicity)
		_, _ = fmt.Fprintf(w, "Contaminant:\t%s\n", cell.Contaminant)
		_, _ = fmt.Fprintf(w, "Persistence:\t%d months\n", cell.PersistenceMonths)
	} else {
		_, _ = fmt.Fprintln(w, "Sector:\tnone")
	}
	_ = w.Flush()
}

func init() {
	classifyCmd.Flags().Float64("lat", 0, "latitude in decimal degrees")
	classifyCmd.Flags().Float64("lng", 0, "longitude in decimal degrees")
	_ = classifyCmd.MarkFlagRequired("lat")
	_ = classifyCmd.MarkFlagRequired("lng")
	addGridFlags(classifyCmd)
	rootCmd.AddCommand(classifyCmd)
}
