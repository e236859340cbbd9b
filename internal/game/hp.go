package game

import (
	"github.com/zombierun/sim/internal/core/event"
	"go.uber.org/zap"
)

// HPManager tracks the car's hit points.
type HPManager struct {
	bus     *event.Bus
	gm      *Manager
	current int
	max     int
	taken   int
	log     *zap.Logger
}

func NewHPManager(bus *event.Bus, gm *Manager, maxHP int, log *zap.Logger) *HPManager {
	h := &HPManager{bus: bus, gm: gm, max: maxHP, log: log}
	h.Reset()

	event.On(bus, func(event.StartGameEvent) { h.Reset() })
	event.On(bus, func(event.RestartGameEvent) { h.Reset() })
	event.On(bus, func(event.ContinueGameEvent) { h.Reset() })
	event.On(bus, func(e event.PlayerDamagedEvent) { h.TakeDamage(e.Amount) })
	return h
}

// Reset restores full HP and announces it.
func (h *HPManager) Reset() {
	h.current = h.max
	h.taken = 0
	h.fireChanged()
}

// TakeDamage subtracts amount, clamping at 0. The transition to 0 ends the
// round exactly once; damage arriving after that is dropped.
func (h *HPManager) TakeDamage(amount int) {
	if amount <= 0 {
		h.log.Warn("non-positive damage ignored", zap.Int("amount", amount))
		return
	}
	if h.current == 0 {
		h.log.Debug("damage after death ignored", zap.Int("amount", amount))
		return
	}

	prev := h.current
	h.current = max(0, h.current-amount)
	h.taken += prev - h.current
	h.fireChanged()

	if h.current == 0 && prev > 0 {
		h.gm.EndGame(false)
	}
}

func (h *HPManager) fireChanged() {
	h.bus.Fire(event.HPChangedEvent{Current: h.current, Max: h.max})
}

func (h *HPManager) Current() int     { return h.current }
func (h *HPManager) Max() int         { return h.max }
func (h *HPManager) IsAlive() bool    { return h.current > 0 }
func (h *HPManager) DamageTaken() int { return h.taken }

// Percentage returns current/max, or 0 when max is 0.
func (h *HPManager) Percentage() float64 {
	if h.max <= 0 {
		return 0
	}
	return float64(h.current) / float64(h.max)
}
