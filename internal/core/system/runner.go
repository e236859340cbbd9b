package system

import "time"

const phaseCount = int(PhaseCleanup) + 1

// Runner executes systems in phase order each tick. Systems are bucketed by
// phase at registration, so systems sharing a phase keep their registration
// order. A phase outside the known range runs with the nearest known phase.
type Runner struct {
	phases [phaseCount][]System
	count  int
	ticks  uint64
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Register(s System) {
	i := min(max(int(s.Phase()), 0), phaseCount-1)
	r.phases[i] = append(r.phases[i], s)
	r.count++
}

// Tick runs every system once.
func (r *Runner) Tick(dt time.Duration) {
	for _, bucket := range r.phases {
		for _, s := range bucket {
			s.Update(dt)
		}
	}
	r.ticks++
}

// TickPhase runs only the systems of one phase. Does not advance Ticks.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if phase < 0 || int(phase) >= phaseCount {
		return
	}
	for _, s := range r.phases[phase] {
		s.Update(dt)
	}
}

// Ticks returns how many full ticks have run.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Len returns the number of registered systems.
func (r *Runner) Len() int { return r.count }
