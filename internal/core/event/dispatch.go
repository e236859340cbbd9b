package event

import (
	"time"

	coresys "github.com/zombierun/sim/internal/core/system"
)

// DispatchSystem flushes posted events once per tick, before game logic runs.
type DispatchSystem struct {
	bus *Bus
}

func NewDispatchSystem(bus *Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *DispatchSystem) Update(_ time.Duration) {
	s.bus.Flush()
}
