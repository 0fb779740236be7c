package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/landscope/internal/zone"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the zones and assets of the scenario",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("zones"); err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		formatZones(cmd.OutOrStdout(), reg)
		return nil
	},
}

// formatZones writes the scenario catalog to out.
func formatZones(out io.Writer, reg *zone.Registry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Scenario:\t%s (v%d)\n", reg.Name(), reg.Version())
	_, _ = fmt.Fprintf(w, "Center:\t%.4f, %.4f\n", reg.Center().Lat, reg.Center().Lng)
	b := reg.Bounds()
	_, _ = fmt.Fprintf(w, "Grid bounds:\t%.3f..%.3f lat, %.3f..%.3f lng\n", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	_, _ = fmt.Fprintf(w, "Territory:\t%d vertices\n", len(reg.Territory()))

	_, _ = fmt.Fprintln(w, "\nKIND\tID\tNAME\tDETAIL")
	_, _ = fmt.Fprintln(w, "----\t--\t----\t------")
	for _, z := range reg.Militarized() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d vertices\n", z.Kind.DisplayName(), z.ID, z.Name, len(z.Polygon))
	}
	for _, z := range reg.Evacuation() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d vertices\n", z.Kind.DisplayName(), z.ID, z.Name, len(z.Polygon))
	}
	for _, c := range reg.Corridors() {
		_, _ = fmt.Fprintf(w, "%s\t\t%s\t%d points\n", zone.KindCorridor.DisplayName(), c.Name, len(c.Path))
	}
	for _, a := range reg.DistributionHubs() {
		_, _ = fmt.Fprintf(w, "%s\t\t%s\t%.4f, %.4f\n", a.Kind.DisplayName(), a.Name, a.Location.Lat, a.Location.Lng)
	}
	for _, a := range reg.WaterSources() {
		_, _ = fmt.Fprintf(w, "%s\t\t%s\t%s %.4f, %.4f\n", a.Kind.DisplayName(), a.Name, a.WaterType, a.Location.Lat, a.Location.Lng)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(zonesCmd)
}
