package game

import (
	"github.com/zombierun/sim/internal/core/event"
	"go.uber.org/zap"
)

// Outcome is how a round ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeTimeout
	OutcomeAborted
)

var outcomeNames = [...]string{"none", "victory", "defeat", "timeout", "aborted"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// UI is the headless stand-in for the end-of-round panels. It records the
// outcome and offers the continue and restart buttons.
type UI struct {
	bus     *event.Bus
	outcome Outcome
	hp      event.HPChangedEvent
	angle   float64
	log     *zap.Logger
}

func NewUI(bus *event.Bus, log *zap.Logger) *UI {
	u := &UI{bus: bus, log: log}

	event.On(bus, func(event.GameOverEvent) { u.show(OutcomeDefeat) })
	event.On(bus, func(event.CarReachedEndEvent) { u.show(OutcomeVictory) })
	event.On(bus, func(event.RestartGameEvent) { u.outcome = OutcomeNone })
	event.On(bus, func(event.ContinueGameEvent) { u.outcome = OutcomeNone })
	event.On(bus, func(e event.HPChangedEvent) { u.hp = e })
	event.On(bus, func(e event.TurretRotatedEvent) { u.angle = e.Angle })
	return u
}

func (u *UI) show(o Outcome) {
	if u.outcome != OutcomeNone {
		return
	}
	u.outcome = o
	u.log.Info("round panel shown",
		zap.Stringer("outcome", o),
		zap.Int("hp", u.hp.Current),
		zap.Int("max_hp", u.hp.Max),
	)
}

// Continue presses the continue button: the next run starts from where the
// car stopped.
func (u *UI) Continue() { u.bus.Fire(event.ContinueGameEvent{}) }

// Restart presses the restart button: the next run starts from the beginning.
func (u *UI) Restart() { u.bus.Fire(event.RestartGameEvent{}) }

func (u *UI) Outcome() Outcome     { return u.outcome }
func (u *UI) HPBar() float64       { return u.hp.Percentage() }
func (u *UI) TurretAngle() float64 { return u.angle }
