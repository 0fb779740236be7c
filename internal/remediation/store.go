// Package remediation tracks field verification progress for grid cells.
// State lives in memory and is keyed by cell id; it is never part of the
// generated hazard profile.
package remediation

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Sentinel errors.
var (
	ErrInvalidStep  = eris.New("remediation: invalid step")
	ErrUnknownTotal = eris.New("remediation: total steps must be positive")
)

// Log records one verified step.
type Log struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Notes     string    `json:"notes"`
	ImageURL  string    `json:"image_url,omitempty"`
	StepIndex int       `json:"step_index"`
}

// State is the operational progress of one cell. TotalSteps is fixed by the
// first completed step; zero means no step has been recorded.
type State struct {
	CellID         string  `json:"cell_id"`
	Progress       float64 `json:"progress"`
	TotalSteps     int     `json:"total_steps"`
	CompletedSteps []int   `json:"completed_steps"`
	Logs           []Log   `json:"logs"`
}

// StepUpdate describes a completed verification step.
type StepUpdate struct {
	StepIndex  int    `json:"step_index"`
	TotalSteps int    `json:"total_steps"`
	Action     string `json:"action"`
	Notes      string `json:"notes"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Store is an in-memory, concurrency-safe map of cell id to State.
type Store struct {
	mu     sync.RWMutex
	states map[string]*State

	nowFunc func() time.Time
	idFunc  func() string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		states:  make(map[string]*State),
		nowFunc: time.Now,
		idFunc:  uuid.NewString,
	}
}

// Get returns a copy of the state for cellID. Unknown cells report zero
// progress with empty step and log lists.
func (s *Store) Get(cellID string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[cellID]
	if !ok {
		return State{CellID: cellID, CompletedSteps: []int{}, Logs: []Log{}}
	}
	return st.clone()
}

// Progress returns the completion percentage for cellID.
func (s *Store) Progress(cellID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[cellID]; ok {
		return st.Progress
	}
	return 0
}

// CompleteStep marks a step done. Step indices form a set, so repeating a
// step adds a log entry but does not advance progress. Every update for a
// cell must carry the total its first update set.
func (s *Store) CompleteStep(cellID string, u StepUpdate) (State, error) {
	if cellID == "" {
		return State{}, eris.Wrap(ErrInvalidStep, "remediation: empty cell id")
	}
	if u.TotalSteps <= 0 {
		return State{}, ErrUnknownTotal
	}
	if u.StepIndex < 0 || u.StepIndex >= u.TotalSteps {
		return State{}, eris.Wrapf(ErrInvalidStep, "remediation: step %d outside [0, %d)", u.StepIndex, u.TotalSteps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[cellID]
	if ok && st.TotalSteps != u.TotalSteps {
		return State{}, eris.Wrapf(ErrInvalidStep, "remediation: cell %s has %d steps, got %d", cellID, st.TotalSteps, u.TotalSteps)
	}
	if !ok {
		st = &State{CellID: cellID, TotalSteps: u.TotalSteps}
		s.states[cellID] = st
	}

	if _, found := slices.BinarySearch(st.CompletedSteps, u.StepIndex); !found {
		st.CompletedSteps = append(st.CompletedSteps, u.StepIndex)
		slices.Sort(st.CompletedSteps)
	}
	st.Progress = min(float64(len(st.CompletedSteps))/float64(st.TotalSteps)*100, 100)

	entry := Log{
		ID:        s.idFunc(),
		Timestamp: s.nowFunc(),
		Action:    u.Action,
		Notes:     u.Notes,
		ImageURL:  u.ImageURL,
		StepIndex: u.StepIndex,
	}
	st.Logs = append([]Log{entry}, st.Logs...)

	zap.L().Info("remediation: step verified",
		zap.String("cell_id", cellID),
		zap.Int("step", u.StepIndex),
		zap.Float64("progress", st.Progress),
	)
	return st.clone(), nil
}

// All returns copies of every tracked state, ordered by cell id.
func (s *Store) All() []State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]State, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st.clone())
	}
	slices.SortFunc(out, func(a, b State) int {
		switch {
		case a.CellID < b.CellID:
			return -1
		case a.CellID > b.CellID:
			return 1
		}
		return 0
	})
	return out
}

// Reset discards all state. Call it when the operational grid is
// regenerated, since cell ids then refer to different tiles.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.states)
	s.states = make(map[string]*State)
	zap.L().Info("remediation: state reset", zap.Int("cells", n))
}

func (st *State) clone() State {
	out := State{
		CellID:         st.CellID,
		Progress:       st.Progress,
		TotalSteps:     st.TotalSteps,
		CompletedSteps: append([]int{}, st.CompletedSteps...),
		Logs:           append([]Log{}, st.Logs...),
	}
	return out
}
