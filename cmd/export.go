package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/export"
	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/zone"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export grid or zone layers as GeoJSON, shapefile or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		layer, _ := cmd.Flags().GetString("layer")
		outPath, _ := cmd.Flags().GetString("out")

		if err := validateExport(format, layer); err != nil {
			return err
		}
		if outPath == "" {
			outPath = defaultExportPath(format, layer)
		}

		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		year, recovery, err := gridParams(cmd)
		if err != nil {
			return err
		}

		var cells []grid.HazardProfile
		if layer == "cells" {
			cells = grid.New(reg).Generate(year, recovery)
		}
		if err := writeExport(format, layer, outPath, reg, cells); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("format", format),
			zap.String("layer", layer),
			zap.String("path", outPath),
			zap.Int("cells", len(cells)),
		)
		return nil
	},
}

func validateExport(format, layer string) error {
	switch format {
	case "geojson", "shp", "xlsx":
	default:
		return eris.Errorf("export: unknown format %q (want geojson, shp or xlsx)", format)
	}
	switch layer {
	case "cells":
	case "zones":
		if format != "geojson" {
			return eris.New("export: layer zones is only available as geojson")
		}
	default:
		return eris.Errorf("export: unknown layer %q (want cells or zones)", layer)
	}
	return nil
}

func defaultExportPath(format, layer string) string {
	return layer + "." + format
}

func writeExport(format, layer, path string, reg *zone.Registry, cells []grid.HazardProfile) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "export: create %s", dir)
		}
	}

	if format == "shp" {
		return export.WriteShapefile(strings.TrimSuffix(path, ".shp")+".shp", cells, nil)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	switch {
	case format == "xlsx":
		err = export.WriteXLSX(f, cells, nil)
	case layer == "zones":
		err = export.WriteGeoJSON(f, export.ZonesGeoJSON(reg))
	default:
		err = export.WriteGeoJSON(f, export.CellsGeoJSON(cells, nil))
	}
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

func init() {
	exportCmd.Flags().String("format", "geojson", "output format: geojson, shp or xlsx")
	exportCmd.Flags().String("layer", "cells", "layer to export: cells or zones")
	exportCmd.Flags().String("out", "", "output path (default <layer>.<format>)")
	addGridFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
