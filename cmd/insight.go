package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/grid"
)

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Request a soil insight for a coordinate",
	Long:  "Asks the language model for a soil and crop assessment. With --cell the request is made for a grid cell, optionally with --guide for its remediation guide.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("insight"); err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		svc := newInsightService(reg, logBreaker(nil))
		ctx := cmd.Context()

		cellID, _ := cmd.Flags().GetString("cell")
		guide, _ := cmd.Flags().GetBool("guide")

		var result any
		if cellID == "" {
			if guide {
				return eris.New("insight: --guide requires --cell")
			}
			lat, _ := cmd.Flags().GetFloat64("lat")
			lng, _ := cmd.Flags().GetFloat64("lng")
			result, err = svc.Point(ctx, geo.Coordinate{Lat: lat, Lng: lng})
		} else {
			year, recovery, perr := gridParams(cmd)
			if perr != nil {
				return perr
			}
			cell, ok := grid.Find(grid.New(reg).Generate(year, recovery), cellID)
			if !ok {
				return eris.Errorf("insight: cell %s not found in %d grid", cellID, year)
			}
			if guide {
				result, err = svc.Guide(ctx, cell)
			} else {
				result, err = svc.Cell(ctx, cell)
			}
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	insightCmd.Flags().Float64("lat", 0, "latitude in decimal degrees")
	insightCmd.Flags().Float64("lng", 0, "longitude in decimal degrees")
	insightCmd.Flags().String("cell", "", "grid cell id, e.g. gz-grid-12-2026")
	insightCmd.Flags().Bool("guide", false, "request the remediation guide for --cell")
	insightCmd.MarkFlagsRequiredTogether("lat", "lng")
	insightCmd.MarkFlagsOneRequired("lat", "cell")
	insightCmd.MarkFlagsMutuallyExclusive("lat", "cell")
	addGridFlags(insightCmd)
	rootCmd.AddCommand(insightCmd)
}
