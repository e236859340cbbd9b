package game

import (
	"time"

	"github.com/zombierun/sim/internal/core/event"
	coresys "github.com/zombierun/sim/internal/core/system"
	"github.com/zombierun/sim/internal/world"
)

// maxDragPerTick caps the synthetic swipe so the turret turns at a
// human-like pace.
const maxDragPerTick = 40.0

// Autopilot stands in for the player. In the menu it taps to get the game
// ready; while playing it drags the turret toward the nearest chasing enemy,
// or the nearest enemy ahead of the car when nothing is chasing.
// Phase 0 (Input).
type Autopilot struct {
	bus     *event.Bus
	gm      *Manager
	turret  *Turret
	car     *Car
	enemies *EnemyManager

	tapped bool
	taps   int
}

func NewAutopilot(bus *event.Bus, gm *Manager, turret *Turret, car *Car, enemies *EnemyManager) *Autopilot {
	a := &Autopilot{bus: bus, gm: gm, turret: turret, car: car, enemies: enemies}
	event.On(bus, func(e event.GameStateChangedEvent) {
		if State(e.Next) == StateMenu {
			a.ResetForNewGame()
		}
	})
	event.On(bus, func(event.GameOverEvent) { a.ResetForNewGame() })
	return a
}

func (a *Autopilot) Phase() coresys.Phase { return coresys.PhaseInput }

func (a *Autopilot) Update(dt time.Duration) {
	switch a.gm.State() {
	case StateMenu:
		if !a.tapped {
			a.tapped = true
			a.taps++
			a.bus.Fire(event.ReadyGameEvent{})
		}
	case StatePlaying:
		a.aim(dt)
	}
}

func (a *Autopilot) aim(dt time.Duration) {
	origin := a.car.Position()
	target := a.enemies.Nearest(origin, (*Enemy).IsChasing)
	if target == nil {
		target = a.enemies.Nearest(origin, func(e *Enemy) bool { return e.Position.Z > origin.Z })
	}
	if target == nil {
		return
	}
	want := world.Heading(target.Position.Sub(origin).Flat())
	delta := a.turret.DragFor(world.DeltaAngle(a.turret.Angle(), want), dt)
	a.turret.Drag(world.Clamp(delta, -maxDragPerTick, maxDragPerTick), dt)
}

// ResetForNewGame lets the autopilot tap again the next time it sees the menu.
func (a *Autopilot) ResetForNewGame() { a.tapped = false }

func (a *Autopilot) Taps() int { return a.taps }
