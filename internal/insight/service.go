package insight

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/access"
	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/grid"
)

// Sentinel errors returned by Service.
var (
	ErrOutOfScope  = eris.New("insight: coordinate outside the supported territory")
	ErrUnavailable = eris.New("insight: no provider configured")
)

// Service gates insight requests by scope, stamps the access level and
// merges precomputed cell attributes into the result.
type Service struct {
	provider Provider
	access   *access.Classifier
}

// NewService creates a Service. provider may be nil, in which case every
// request fails with ErrUnavailable.
func NewService(provider Provider, classifier *access.Classifier) *Service {
	return &Service{provider: provider, access: classifier}
}

// Available reports whether a provider is configured.
func (s *Service) Available() bool { return s.provider != nil }

// Point returns a soil insight for a free map click.
func (s *Service) Point(ctx context.Context, pt geo.Coordinate) (*AgriculturalInsight, error) {
	return s.soil(ctx, pt, nil)
}

// Cell returns a soil insight for a grid cell, filling the water source and
// disease list from the cell when the model omitted them.
func (s *Service) Cell(ctx context.Context, cell grid.HazardProfile) (*AgriculturalInsight, error) {
	ins, err := s.soil(ctx, cell.Center, &cell)
	if err != nil {
		return nil, err
	}
	MergeCellDefaults(ins, cell)
	return ins, nil
}

// Guide returns a remediation guide for a cell.
func (s *Service) Guide(ctx context.Context, cell grid.HazardProfile) (*ContaminationGuide, error) {
	if s.provider == nil {
		return nil, ErrUnavailable
	}
	return s.provider.ContaminationGuide(ctx, Query{
		Point:  cell.Center,
		Access: s.access.Classify(cell.Center),
		Cell:   &cell,
	})
}

// Crisis returns a coordination report for a cell. guide and soil may be nil.
func (s *Service) Crisis(ctx context.Context, cell grid.HazardProfile, guide *ContaminationGuide, soil *AgriculturalInsight) (*CrisisAnalysis, error) {
	if s.provider == nil {
		return nil, ErrUnavailable
	}
	return s.provider.CrisisAnalysis(ctx, CrisisQuery{Cell: cell, Guide: guide, Insight: soil})
}

func (s *Service) soil(ctx context.Context, pt geo.Coordinate, cell *grid.HazardProfile) (*AgriculturalInsight, error) {
	res, ok := s.access.Eligible(pt)
	if !ok {
		zap.L().Debug("insight: out of scope", zap.Float64("lat", pt.Lat), zap.Float64("lng", pt.Lng))
		return nil, ErrOutOfScope
	}
	if s.provider == nil {
		return nil, ErrUnavailable
	}

	ins, err := s.provider.SoilInsight(ctx, Query{Point: pt, Access: res, Cell: cell})
	if err != nil {
		return nil, err
	}
	ins.Location = [2]float64{pt.Lat, pt.Lng}
	ins.DangerLevel = res.Level
	return ins, nil
}
