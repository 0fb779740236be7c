package export

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/grid"
)

// wgs84PRJ is the ESRI projection definition for EPSG:4326.
const wgs84PRJ = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// Shapefile attribute columns. DBF field names are limited to 10 bytes.
var shpFields = []shp.Field{
	shp.StringField("ID", 32),
	shp.StringField("SECTOR", 12),
	shp.NumberField("YEAR", 4),
	shp.StringField("BRANCH", 12),
	shp.StringField("TOXICITY", 8),
	shp.StringField("CONTAM", 32),
	shp.NumberField("PERSIST", 4),
	shp.StringField("WATER", 24),
	shp.StringField("RISKS", 64),
	shp.FloatField("PROGRESS", 6, 1),
}

// WriteShapefile writes cells as a polygon shapefile at path (the .shp file;
// .shx, .dbf and .prj siblings are created alongside).
func WriteShapefile(path string, cells []grid.HazardProfile, progress ProgressFunc) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	err = writeShapes(w, cells, progress)
	w.Close()
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(path, ".shp")
	if err := fixDBFName(base); err != nil {
		return err
	}

	prj := base + ".prj"
	if err := os.WriteFile(prj, []byte(wgs84PRJ), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", prj)
	}

	zap.L().Info("export: shapefile written", zap.String("path", path), zap.Int("cells", len(cells)))
	return nil
}

func writeShapes(w *shp.Writer, cells []grid.HazardProfile, progress ProgressFunc) error {
	if err := w.SetFields(shpFields); err != nil {
		return eris.Wrap(err, "export: set shapefile fields")
	}

	for _, c := range cells {
		row := int(w.Write(cellShape(c)))
		values := []any{
			c.ID,
			c.SectorID,
			c.Year,
			string(c.Branch),
			c.Toxicity.String(),
			string(c.Contaminant),
			c.PersistenceMonths,
			c.WaterSource,
			strings.Join(c.HealthRisks, ";"),
			progress.of(c.ID),
		}
		for field, v := range values {
			if err := w.WriteAttribute(row, field, v); err != nil {
				return eris.Wrapf(err, "export: write attribute %d of %s", field, c.ID)
			}
		}
	}
	return nil
}

// fixDBFName moves the attribute table to <base>.dbf. go-shp's writer names
// it <base>dbf, without the dot, once the .shp suffix is stripped.
func fixDBFName(base string) error {
	want := base + ".dbf"
	got := base + "dbf"
	if _, err := os.Stat(got); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "export: stat %s", got)
	}
	if err := os.Rename(got, want); err != nil {
		return eris.Wrapf(err, "export: rename %s to %s", got, want)
	}
	return nil
}

// cellShape returns the cell square as a single clockwise ring, the ESRI
// orientation for outer rings.
func cellShape(c grid.HazardProfile) *shp.Polygon {
	sq := c.Polygon()
	ring := make([]shp.Point, 0, len(sq)+1)
	for i := len(sq) - 1; i >= 0; i-- {
		ring = append(ring, shp.Point{X: sq[i].Lng, Y: sq[i].Lat})
	}
	ring = append(ring, ring[0])

	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
	return &poly
}
