package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: autopilot / player input
	PhaseEvents                  // 1: flush events posted last tick
	PhaseUpdate                  // 2: game logic (AI, turret)
	PhasePhysics                 // 3: fixed-step movement and contacts
	PhasePostUpdate              // 4: camera follow and blends
	PhaseCleanup                 // 5: return spent instances to pools
)

var phaseNames = [...]string{"input", "events", "update", "physics", "post-update", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Func adapts a plain function to System.
type Func struct {
	P  Phase
	Fn func(dt time.Duration)
}

func (f Func) Phase() Phase            { return f.P }
func (f Func) Update(dt time.Duration) { f.Fn(dt) }
