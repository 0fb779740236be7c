package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/zone"
)

func TestDefaultCheckpoints(t *testing.T) {
	cps := DefaultCheckpoints()
	require.Len(t, cps, 5)
	require.NoError(t, Validate(cps))

	assert.Equal(t, Checkpoint{Label: "Jan 2024 (Conflict)", Year: 2024, RecoveryFactor: -1}, cps[0])
	assert.Equal(t, Checkpoint{Label: "Jan 2028 (Future Restoration)", Year: 2028, RecoveryFactor: 2}, cps[4])

	op, ok := Operational(cps)
	require.True(t, ok)
	assert.Equal(t, 2026, op.Year)
	assert.Equal(t, 0, op.RecoveryFactor)
}

func TestPhase(t *testing.T) {
	assert.Equal(t, PhaseActive, Phase(2024))
	assert.Equal(t, PhaseActive, Phase(2026))
	assert.Equal(t, PhasePostConflict, Phase(2027))
	assert.Equal(t, PhasePostConflict, Phase(2030))
}

func TestBuild(t *testing.T) {
	gen := grid.New(zone.MustDefault())
	snaps := Build(gen.Generate, DefaultCheckpoints())
	require.Len(t, snaps, 5)

	for i, s := range snaps {
		assert.Equal(t, DefaultCheckpoints()[i], s.Checkpoint)
		assert.Equal(t, len(s.Cells), s.Summary.Cells)
		assert.Equal(t, Phase(s.Year), s.Phase)
		for _, c := range s.Cells {
			assert.Equal(t, s.Year, c.Year)
			assert.Equal(t, s.RecoveryFactor, c.RecoveryFactor)
		}
	}

	first, last := snaps[0].Summary, snaps[4].Summary
	assert.Less(t, last.MeanToxicity, first.MeanToxicity)
	assert.Less(t, last.MeanPersistence, first.MeanPersistence)
}

func TestBuild_UsesCache(t *testing.T) {
	cache := grid.NewCache(grid.New(zone.MustDefault()), 8, 0)
	Build(cache.Grid, DefaultCheckpoints())
	Build(cache.Grid, DefaultCheckpoints())

	stats := cache.Stats()
	assert.Equal(t, 5, stats.Entries)
	assert.Equal(t, int64(5), stats.Hits)
}

func TestBuild_CallsInOrder(t *testing.T) {
	var years []int
	fake := func(year, recovery int) []grid.HazardProfile {
		years = append(years, year)
		return nil
	}
	snaps := Build(fake, DefaultCheckpoints())
	assert.Equal(t, []int{2024, 2025, 2026, 2027, 2028}, years)
	assert.Zero(t, snaps[0].Summary.Cells)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(nil))
	assert.Error(t, Validate([]Checkpoint{{Year: 2024}}))
	assert.Error(t, Validate([]Checkpoint{{Label: "b", Year: 2025}, {Label: "a", Year: 2024}}))
	assert.NoError(t, Validate([]Checkpoint{{Label: "a", Year: 2024}, {Label: "b", Year: 2024, RecoveryFactor: 1}}))
}

func TestOperational_Short(t *testing.T) {
	_, ok := Operational(nil)
	assert.False(t, ok)

	cp, ok := Operational([]Checkpoint{{Label: "only", Year: 2030}})
	require.True(t, ok)
	assert.Equal(t, "only", cp.Label)
}
