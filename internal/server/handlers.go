package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/access"
	"github.com/sells-group/landscope/internal/export"
	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/insight"
	"github.com/sells-group/landscope/internal/palette"
	"github.com/sells-group/landscope/internal/remediation"
	"github.com/sells-group/landscope/internal/timeline"
	"github.com/sells-group/landscope/internal/zone"
)

// cellView is a hazard profile joined with its operational state.
type cellView struct {
	grid.HazardProfile
	Progress float64 `json:"progress"`
	Fill     string  `json:"fill"`
}

type gridResponse struct {
	Phase   string       `json:"phase"`
	Summary grid.Summary `json:"summary"`
	Cells   []cellView   `json:"cells"`
}

type zonesResponse struct {
	Name             string                   `json:"name"`
	Version          int                      `json:"version"`
	Center           geo.Coordinate           `json:"center"`
	Bounds           geo.BBox                 `json:"bounds"`
	Scope            geo.BBox                 `json:"scope"`
	Territory        geo.Polygon              `json:"territory"`
	Militarized      []zone.Zone              `json:"militarized"`
	Evacuation       []zone.Zone              `json:"evacuation"`
	Corridors        []zone.Corridor          `json:"corridors"`
	DistributionHubs []zone.PointAsset        `json:"distribution_hubs"`
	WaterSources     []zone.PointAsset        `json:"water_sources"`
	Restricted       []zone.RestrictedZone    `json:"restricted"`
	Styles           map[zone.Kind]zone.Style `json:"styles"`
}

type classifyResponse struct {
	Access  access.Result       `json:"access"`
	InScope bool                `json:"in_scope"`
	Cell    *grid.HazardProfile `json:"cell,omitempty"`
}

type cellResponse struct {
	Cell  cellView          `json:"cell"`
	State remediation.State `json:"state"`
}

type pointRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type crisisRequest struct {
	Guide   *insight.ContaminationGuide  `json:"guide"`
	Insight *insight.AgriculturalInsight `json:"insight"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"scenario": s.reg.Name(),
		"insight":  s.insight.Available(),
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	year, recovery, err := s.gridParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cells := s.grid.Grid(year, recovery)
	views := make([]cellView, len(cells))
	for i, c := range cells {
		views[i] = s.view(c)
	}
	writeJSON(w, http.StatusOK, gridResponse{
		Phase:   timeline.Phase(year),
		Summary: grid.Summarize(cells),
		Cells:   views,
	})
}

func (s *Server) handleGridGeoJSON(w http.ResponseWriter, r *http.Request) {
	year, recovery, err := s.gridParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fc := export.CellsGeoJSON(s.grid.Grid(year, recovery), s.store.Progress)
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.WriteGeoJSON(w, fc); err != nil {
		zap.L().Error("server: write grid geojson", zap.Error(err))
	}
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	snaps := timeline.Build(s.grid.Grid, s.checkpoints)
	if r.URL.Query().Get("cells") == "false" {
		for i := range snaps {
			snaps[i].Cells = nil
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"operational": s.operational,
		"snapshots":   snaps,
	})
}

func (s *Server) handleZones(w http.ResponseWriter, _ *http.Request) {
	styles := make(map[zone.Kind]zone.Style, len(zone.Kinds))
	for _, k := range zone.Kinds {
		styles[k] = s.reg.Style(k)
	}
	writeJSON(w, http.StatusOK, zonesResponse{
		Name:             s.reg.Name(),
		Version:          s.reg.Version(),
		Center:           s.reg.Center(),
		Bounds:           s.reg.Bounds(),
		Scope:            s.reg.Scope(),
		Territory:        s.reg.Territory(),
		Militarized:      s.reg.Militarized(),
		Evacuation:       s.reg.Evacuation(),
		Corridors:        s.reg.Corridors(),
		DistributionHubs: s.reg.DistributionHubs(),
		WaterSources:     s.reg.WaterSources(),
		Restricted:       s.reg.Restricted(),
		Styles:           styles,
	})
}

func (s *Server) handleZonesGeoJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.WriteGeoJSON(w, export.ZonesGeoJSON(s.reg)); err != nil {
		zap.L().Error("server: write zones geojson", zap.Error(err))
	}
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	pt, err := pointParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, inScope := s.access.Eligible(pt)
	out := classifyResponse{Access: res, InScope: inScope}
	if c, ok := grid.CellAt(s.operationalGrid(), pt.Lat, pt.Lng); ok {
		out.Cell = &c
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBlend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, err := strconv.ParseFloat(q.Get("t"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "t must be a number")
		return
	}
	color, err := palette.Blend(q.Get("a"), q.Get("b"), t)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"color": color})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.store.Reset()
	s.grid.Purge()
	zap.L().Info("server: operational state reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := s.findCell(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("cell %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, cellResponse{Cell: s.view(c), State: s.store.Get(id)})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := grid.Find(s.operationalGrid(), id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("cell %s is not in the operational grid", id))
		return
	}
	var u remediation.StepUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	st, err := s.store.CompleteStep(id, u)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.metrics.stepCompleted()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePointInsight(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}
	ins, err := s.insight.Point(r.Context(), geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

func (s *Server) handleCellInsight(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cellParam(w, r)
	if !ok {
		return
	}
	ins, err := s.insight.Cell(r.Context(), c)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cellParam(w, r)
	if !ok {
		return
	}
	guide, err := s.insight.Guide(r.Context(), c)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guide)
}

func (s *Server) handleCrisis(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cellParam(w, r)
	if !ok {
		return
	}
	var req crisisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	report, err := s.insight.Crisis(r.Context(), c, req.Guide, req.Insight)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) cellParam(w http.ResponseWriter, r *http.Request) (grid.HazardProfile, bool) {
	id := chi.URLParam(r, "id")
	c, ok := s.findCell(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("cell %s not found", id))
	}
	return c, ok
}

func (s *Server) view(c grid.HazardProfile) cellView {
	progress := s.store.Progress(c.ID)
	return cellView{
		HazardProfile: c,
		Progress:      progress,
		Fill:          palette.CellFill(c.Toxicity, progress),
	}
}

// gridParams reads year and recovery, defaulting to the operational
// checkpoint.
func (s *Server) gridParams(r *http.Request) (year, recovery int, err error) {
	year, recovery = s.operational.Year, s.operational.RecoveryFactor
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			return 0, 0, eris.New("year must be an integer")
		}
	}
	if v := q.Get("recovery"); v != "" {
		if recovery, err = strconv.Atoi(v); err != nil {
			return 0, 0, eris.New("recovery must be an integer")
		}
	}
	return year, recovery, nil
}

func pointParams(r *http.Request) (geo.Coordinate, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return geo.Coordinate{}, eris.New("lat must be a number")
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return geo.Coordinate{}, eris.New("lng must be a number")
	}
	return geo.Coordinate{Lat: lat, Lng: lng}, nil
}
