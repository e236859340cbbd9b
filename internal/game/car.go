package game

import (
	"time"

	"github.com/zombierun/sim/internal/core/event"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

// Car drives along +Z on the fixed step. Reaching the level end wins the
// round; after the win it decelerates to a stop.
type Car struct {
	gm      *Manager
	cfg     *data.CarSettings
	game    *data.GameSettings
	pos     world.Vec3
	speed   float64
	moving  bool
	active  bool
	braking bool
	originZ float64
	levelZ  float64
	log     *zap.Logger
}

func NewCar(bus *event.Bus, gm *Manager, cfg *data.CarSettings, game *data.GameSettings, log *zap.Logger) *Car {
	c := &Car{gm: gm, cfg: cfg, game: game, pos: cfg.StartPosition, originZ: cfg.StartPosition.Z, log: log}

	event.On(bus, func(event.StartGameEvent) { c.start() })
	event.On(bus, func(event.RestartGameEvent) { c.ResetPosition() })
	event.On(bus, func(event.ContinueGameEvent) { c.resetState() })
	event.On(bus, func(event.GameOverEvent) {
		c.stop()
		c.active = false
	})
	event.On(bus, func(event.CarReachedEndEvent) {
		c.braking = true
		c.active = false
	})
	return c
}

func (c *Car) start() {
	c.moving = true
	c.active = true
	c.braking = false
	c.speed = 0
	c.originZ = c.pos.Z
	c.levelZ = world.LevelEnd(c.pos.Z, c.game.MapLength, c.game.TileLength)
	c.log.Info("car started", zap.Float64("level_end", c.levelZ))
}

func (c *Car) stop() {
	c.moving = false
	c.speed = 0
}

func (c *Car) resetState() {
	c.levelZ = 0
	c.speed = 0
	c.moving = false
	c.active = false
	c.braking = false
}

// ResetPosition moves the car back to its start position and stops it.
func (c *Car) ResetPosition() {
	c.pos = c.cfg.StartPosition
	c.originZ = c.pos.Z
	c.resetState()
}

// FixedUpdate advances the car by one physics step.
func (c *Car) FixedUpdate(dt time.Duration) {
	if !c.moving {
		return
	}
	step := dt.Seconds()
	switch {
	case c.braking:
		c.speed = world.MoveTowards(c.speed, 0, c.cfg.Deceleration*step)
		c.pos = c.pos.Add(world.Forward.Scale(c.speed * step))
		if c.speed <= 0 {
			c.stop()
		}
	case c.active:
		c.speed = world.MoveTowards(c.speed, c.cfg.Speed, c.cfg.Acceleration*step)
		c.pos = c.pos.Add(world.Forward.Scale(c.speed * step))
		if c.pos.Z >= c.levelZ {
			c.gm.EndGame(true)
		}
	}
}

func (c *Car) Position() world.Vec3 { return c.pos }
func (c *Car) Speed() float64       { return c.speed }
func (c *Car) IsMoving() bool       { return c.moving }
func (c *Car) LevelEnd() float64    { return c.levelZ }

// Distance is how far the car has driven since the current round started.
func (c *Car) Distance() float64 { return c.pos.Z - c.originZ }
