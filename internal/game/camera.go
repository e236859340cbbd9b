package game

import (
	"time"

	"github.com/zombierun/sim/internal/core/event"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

// CameraKind names a virtual camera.
type CameraKind int

const (
	CameraMenu CameraKind = iota
	CameraGameplay
	CameraGameOver
)

var cameraNames = [...]string{"menu", "gameplay", "game-over"}

func (k CameraKind) String() string {
	if k < 0 || int(k) >= len(cameraNames) {
		return "unknown"
	}
	return cameraNames[k]
}

const (
	basePriority   = 10
	activePriority = 20
)

// Camera switches between virtual cameras by priority. The blend into the
// gameplay camera gates the start of the round: StartGame fires once the
// transition has elapsed.
type Camera struct {
	bus        *event.Bus
	cfg        *data.CameraSettings
	car        *Car
	priorities map[CameraKind]int
	current    CameraKind
	position   world.Vec3

	blending bool
	blend    time.Duration
	log      *zap.Logger
}

func NewCamera(bus *event.Bus, cfg *data.CameraSettings, car *Car, log *zap.Logger) *Camera {
	c := &Camera{
		bus:        bus,
		cfg:        cfg,
		car:        car,
		priorities: make(map[CameraKind]int, len(cameraNames)),
		log:        log,
	}
	for k := range cameraNames {
		c.priorities[CameraKind(k)] = basePriority
	}
	c.priorities[CameraMenu] = activePriority
	c.current = CameraMenu
	c.position = car.Position().Add(cfg.Offset)

	event.On(bus, func(event.ReadyGameEvent) {
		c.SwitchTo(CameraGameplay)
		c.blending = true
		c.blend = 0
	})
	event.On(bus, func(event.GameOverEvent) { c.SwitchTo(CameraGameOver) })
	event.On(bus, func(event.ContinueGameEvent) { c.SwitchTo(CameraMenu) })
	event.On(bus, func(event.RestartGameEvent) { c.SwitchTo(CameraMenu) })
	return c
}

// SwitchTo raises target to the active priority and drops every other camera
// to the base priority. Switching to the current camera does nothing.
func (c *Camera) SwitchTo(target CameraKind) {
	if _, ok := c.priorities[target]; !ok || target == c.current {
		return
	}
	prev := c.current
	for k := range c.priorities {
		c.priorities[k] = basePriority
	}
	c.priorities[target] = activePriority
	c.current = target
	if target != CameraGameplay {
		c.blending = false
	}
	c.log.Debug("camera switched", zap.Stringer("from", prev), zap.Stringer("to", target))
	c.bus.Fire(event.CameraSwitchedEvent{From: int(prev), To: int(target), Name: target.String()})
}

// Update follows the car and completes a pending gameplay blend.
func (c *Camera) Update(dt time.Duration) {
	want := c.car.Position().Add(c.cfg.Offset)
	k := min(1, c.cfg.FollowSpeed*dt.Seconds())
	c.position = c.position.Add(want.Sub(c.position).Scale(k))

	if !c.blending {
		return
	}
	c.blend += dt
	if c.blend >= c.cfg.Transition {
		c.blending = false
		c.bus.Fire(event.StartGameEvent{})
	}
}

func (c *Camera) Current() CameraKind       { return c.current }
func (c *Camera) Priority(k CameraKind) int { return c.priorities[k] }
func (c *Camera) Position() world.Vec3      { return c.position }
func (c *Camera) IsBlending() bool          { return c.blending }
