// Package timeline builds the ordered series of grid snapshots shown on the
// time slider.
package timeline

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/landscope/internal/grid"
)

// OperationalIndex is the position of the checkpoint that carries live
// remediation state.
const OperationalIndex = 2

// Phase labels.
const (
	PhaseActive       = "ACTIVE GRID SYNC"
	PhasePostConflict = "POST-CONFLICT SYNC"
)

// Checkpoint is one point on the timeline.
type Checkpoint struct {
	Label          string `json:"label" yaml:"label" mapstructure:"label"`
	Year           int    `json:"year" yaml:"year" mapstructure:"year"`
	RecoveryFactor int    `json:"recovery_factor" yaml:"recovery_factor" mapstructure:"recovery_factor"`
}

// Snapshot is a generated grid at a checkpoint.
type Snapshot struct {
	Checkpoint
	Phase   string               `json:"phase"`
	Cells   []grid.HazardProfile `json:"cells"`
	Summary grid.Summary         `json:"summary"`
}

// GridFunc produces the grid for a year and recovery factor. Generator.Generate
// and Cache.Grid both satisfy it.
type GridFunc func(year, recovery int) []grid.HazardProfile

// DefaultCheckpoints returns the standard five-step timeline.
func DefaultCheckpoints() []Checkpoint {
	return []Checkpoint{
		{Label: "Jan 2024 (Conflict)", Year: 2024, RecoveryFactor: -1},
		{Label: "Jan 2025 (Initial)", Year: 2025, RecoveryFactor: 0},
		{Label: "Jan 2026 (Ops)", Year: 2026, RecoveryFactor: 0},
		{Label: "Jan 2027 (Future Recovery)", Year: 2027, RecoveryFactor: 1},
		{Label: "Jan 2028 (Future Restoration)", Year: 2028, RecoveryFactor: 2},
	}
}

// Validate checks that checkpoints are non-empty, labeled and in
// non-decreasing year order.
func Validate(checkpoints []Checkpoint) error {
	if len(checkpoints) == 0 {
		return eris.New("timeline: no checkpoints")
	}
	for i, cp := range checkpoints {
		if cp.Label == "" {
			return eris.Errorf("timeline: checkpoint %d has no label", i)
		}
		if i > 0 && cp.Year < checkpoints[i-1].Year {
			return eris.Errorf("timeline: checkpoint %q precedes %q", cp.Label, checkpoints[i-1].Label)
		}
	}
	return nil
}

// Build generates one snapshot per checkpoint, in order.
func Build(gen GridFunc, checkpoints []Checkpoint) []Snapshot {
	out := make([]Snapshot, 0, len(checkpoints))
	for _, cp := range checkpoints {
		cells := gen(cp.Year, cp.RecoveryFactor)
		out = append(out, Snapshot{
			Checkpoint: cp,
			Phase:      Phase(cp.Year),
			Cells:      cells,
			Summary:    grid.Summarize(cells),
		})
	}
	return out
}

// Operational returns the checkpoint that carries live remediation state.
// It falls back to the last checkpoint for shorter timelines.
func Operational(checkpoints []Checkpoint) (Checkpoint, bool) {
	if len(checkpoints) == 0 {
		return Checkpoint{}, false
	}
	if OperationalIndex < len(checkpoints) {
		return checkpoints[OperationalIndex], true
	}
	return checkpoints[len(checkpoints)-1], true
}

// Phase returns the status label for a year.
func Phase(year int) string {
	if year >= grid.DecommissionYear {
		return PhasePostConflict
	}
	return PhaseActive
}
