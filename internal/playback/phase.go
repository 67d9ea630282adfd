// Package playback decides what a recording session does on each tick: which
// phase the page should be in and whether to pause or scroll. Decisions are
// pure functions of elapsed time and an injected random source; the Loop
// applies them to a Navigator.
package playback

import "time"

// Phase is one of the sequential display states of a session.
type Phase int

const (
	PhaseReadme Phase = iota
	PhaseCode
	PhaseOutput
)

// MinPhaseDwell is how long a phase must be on screen before it can end.
const MinPhaseDwell = 5 * time.Second

// exitFraction is the share of the total duration after which a phase ends.
var exitFraction = map[Phase]float64{
	PhaseReadme: 0.35,
	PhaseCode:   0.65,
}

func (p Phase) String() string {
	switch p {
	case PhaseReadme:
		return "readme"
	case PhaseCode:
		return "code"
	case PhaseOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Next returns the phase that follows p. OUTPUT is terminal.
func (p Phase) Next() (Phase, bool) {
	if p >= PhaseOutput {
		return p, false
	}
	return p + 1, true
}

// ShouldAdvance reports whether a session in phase should move on, given the
// elapsed session time, the total duration and the time spent in phase.
func ShouldAdvance(phase Phase, elapsed, total, phaseElapsed time.Duration) bool {
	frac, ok := exitFraction[phase]
	if !ok {
		return false
	}
	return elapsed.Seconds() > frac*total.Seconds() && phaseElapsed > MinPhaseDwell
}

// State is the playback position threaded through every tick.
type State struct {
	Phase            Phase
	SessionStartedAt time.Time
	PhaseStartedAt   time.Time
}

// NewState starts a session in README at now.
func NewState(now time.Time) State {
	return State{
		Phase:            PhaseReadme,
		SessionStartedAt: now,
		PhaseStartedAt:   now,
	}
}

// Due returns the phase to move to when a transition is due at now.
func (s State) Due(now time.Time, total time.Duration) (Phase, bool) {
	next, ok := s.Phase.Next()
	if !ok {
		return s.Phase, false
	}
	if !ShouldAdvance(s.Phase, now.Sub(s.SessionStartedAt), total, now.Sub(s.PhaseStartedAt)) {
		return s.Phase, false
	}
	return next, true
}

// Advance returns the state after a completed transition at now.
// Advancing from OUTPUT returns s unchanged.
func (s State) Advance(now time.Time) State {
	next, ok := s.Phase.Next()
	if !ok {
		return s
	}
	s.Phase = next
	s.PhaseStartedAt = now
	return s
}
