package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/landscope/internal/grid"
)

var sectorHeader = []string{
	"Cell ID", "Sector", "Year", "Latitude", "Longitude", "Branch", "Toxicity",
	"Contaminant", "Persistence (months)", "Water Source", "Health Risks", "Progress (%)",
}

// WriteXLSX writes a sector report workbook with a "Sectors" sheet (one row
// per cell) and a "Summary" sheet (counts per toxicity and branch).
func WriteXLSX(w io.Writer, cells []grid.HazardProfile, progress ProgressFunc) error {
	f := xlsx.NewFile()

	sectors, err := f.AddSheet("Sectors")
	if err != nil {
		return eris.Wrap(err, "export: add sectors sheet")
	}
	addStrings(sectors.AddRow(), sectorHeader...)
	for _, c := range cells {
		row := sectors.AddRow()
		addStrings(row, c.ID, c.SectorID)
		row.AddCell().SetInt(c.Year)
		row.AddCell().SetFloat(c.Center.Lat)
		row.AddCell().SetFloat(c.Center.Lng)
		addStrings(row, string(c.Branch), c.Toxicity.String(), string(c.Contaminant))
		row.AddCell().SetInt(c.PersistenceMonths)
		addStrings(row, c.WaterSource, strings.Join(c.HealthRisks, ", "))
		row.AddCell().SetFloat(progress.of(c.ID))
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	s := grid.Summarize(cells)
	addStrings(summary.AddRow(), "Metric", "Value")
	addMetric(summary, "Cells", float64(s.Cells))
	addMetric(summary, "Mean toxicity", s.MeanToxicity)
	addMetric(summary, "Mean persistence (months)", s.MeanPersistence)
	addMetric(summary, "Max persistence (months)", float64(s.MaxPersistence))
	for t := grid.ToxicityLow; t <= grid.ToxicityCritical; t++ {
		addMetric(summary, "Toxicity "+t.String(), float64(s.ByToxicity[t.String()]))
	}
	for _, b := range grid.Branches {
		addMetric(summary, "Branch "+string(b), float64(s.ByBranch[b]))
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addMetric(sheet *xlsx.Sheet, name string, v float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(name)
	row.AddCell().SetFloat(v)
}
