package game

import (
	"github.com/zombierun/sim/internal/core/event"
	"go.uber.org/zap"
)

// State is the round state.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StateGameOver
	StateVictory
)

var stateNames = [...]string{"menu", "playing", "game-over", "victory"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Manager owns the round state machine:
// Menu -> Playing -> (GameOver | Victory) -> Menu.
type Manager struct {
	bus   *event.Bus
	hp    *HPManager
	state State
	log   *zap.Logger
}

// NewManager starts in Menu. hp may be nil until SetHP is called.
func NewManager(bus *event.Bus, log *zap.Logger) *Manager {
	m := &Manager{bus: bus, state: StateMenu, log: log}

	event.On(bus, func(event.StartGameEvent) {
		if m.state == StateMenu {
			m.StartGame()
		}
	})
	event.On(bus, func(event.RestartGameEvent) { m.changeState(StateMenu) })
	event.On(bus, func(event.ContinueGameEvent) { m.changeState(StateMenu) })
	event.On(bus, func(event.GameOverEvent) { m.changeState(StateGameOver) })
	event.On(bus, func(event.CarReachedEndEvent) {
		if m.hp == nil || m.hp.IsAlive() {
			m.EndGame(true)
		}
	})
	return m
}

// SetHP links the HP manager consulted on damage and level completion.
func (m *Manager) SetHP(hp *HPManager) { m.hp = hp }

func (m *Manager) State() State { return m.state }

// StartGame enters Playing. Only valid from Menu.
func (m *Manager) StartGame() {
	if m.state != StateMenu {
		m.log.Debug("start ignored", zap.Stringer("state", m.state))
		return
	}
	m.changeState(StatePlaying)
}

// EndGame finishes the round and announces the outcome. Only valid from
// Playing, so a second call in the same round is a no-op.
func (m *Manager) EndGame(victory bool) {
	if m.state != StatePlaying {
		return
	}
	if victory {
		m.changeState(StateVictory)
		m.bus.Fire(event.CarReachedEndEvent{})
	} else {
		m.changeState(StateGameOver)
		m.bus.Fire(event.GameOverEvent{})
	}
}

// RestartGame returns to Menu. Rejected while Playing.
func (m *Manager) RestartGame() bool {
	if m.state == StatePlaying {
		return false
	}
	m.changeState(StateMenu)
	return true
}

func (m *Manager) changeState(next State) {
	if m.state == next {
		return
	}
	prev := m.state
	m.state = next
	m.log.Info("game state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
	)
	m.bus.Fire(event.GameStateChangedEvent{Previous: int(prev), Next: int(next)})
}
