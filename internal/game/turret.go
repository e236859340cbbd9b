package game

import (
	"time"

	"github.com/zombierun/sim/internal/core/event"
	"github.com/zombierun/sim/internal/core/pool"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

// Turret is mounted on the car. It rotates with horizontal drag input inside
// ±MaxRotationAngle and fires pooled bullets at FireRate while enabled.
type Turret struct {
	bus     *event.Bus
	cfg     *data.WeaponSettings
	car     *Car
	bullets *pool.Pool[*Bullet]

	enabled  bool
	angle    float64
	cooldown time.Duration
	shots    int
	log      *zap.Logger
}

func NewTurret(bus *event.Bus, cfg *data.WeaponSettings, car *Car, bullets *pool.Pool[*Bullet], log *zap.Logger) *Turret {
	t := &Turret{bus: bus, cfg: cfg, car: car, bullets: bullets, log: log}

	event.On(bus, func(event.StartGameEvent) { t.EnableControl() })
	event.On(bus, func(event.GameOverEvent) {
		t.DisableControl()
		t.ResetRotation()
		bullets.ReleaseAll()
	})
	event.On(bus, func(event.CarReachedEndEvent) {
		t.DisableControl()
		bullets.ReleaseAll()
	})
	return t
}

func (t *Turret) EnableControl() {
	t.enabled = true
	t.cooldown = 0
	t.shots = 0
}

func (t *Turret) DisableControl() { t.enabled = false }

func (t *Turret) ResetRotation() { t.setRotation(0) }

// Drag rotates the turret by a horizontal input delta. Ignored while disabled.
func (t *Turret) Drag(deltaX float64, dt time.Duration) {
	if !t.enabled {
		return
	}
	rot := deltaX * t.cfg.InputSensitivity * t.cfg.RotationSpeed * dt.Seconds() * 0.01
	t.setRotation(world.Clamp(t.angle+rot, -t.cfg.MaxRotationAngle, t.cfg.MaxRotationAngle))
}

// DragFor returns the input delta that Drag would turn into a rotation of deg
// degrees over dt.
func (t *Turret) DragFor(deg float64, dt time.Duration) float64 {
	k := t.cfg.InputSensitivity * t.cfg.RotationSpeed * dt.Seconds() * 0.01
	if k == 0 {
		return 0
	}
	return deg / k
}

func (t *Turret) setRotation(angle float64) {
	t.angle = angle
	t.bus.Fire(event.TurretRotatedEvent{Angle: angle, MaxAngle: t.cfg.MaxRotationAngle})
}

// Update fires a bullet every FireRate while enabled.
func (t *Turret) Update(dt time.Duration) {
	if !t.enabled {
		return
	}
	t.cooldown -= dt
	if t.cooldown > 0 {
		return
	}
	t.cooldown = t.cfg.FireRate
	t.fire()
}

func (t *Turret) fire() {
	b, _, ok := t.bullets.Get()
	if !ok {
		t.log.Warn("no bullet available", zap.Int("owned", t.bullets.Len()))
		return
	}
	b.Launch(t.car.Position(), t.Direction(), t.cfg.BulletSpeed, t.cfg.BulletDamage, t.cfg.BulletLifetime)
	t.shots++
	t.bus.Fire(event.BulletFiredEvent{Angle: t.angle})
}

// Direction is the current aim on the XZ plane.
func (t *Turret) Direction() world.Vec3 { return world.Forward.RotateY(t.angle) }

func (t *Turret) Angle() float64  { return t.angle }
func (t *Turret) IsEnabled() bool { return t.enabled }
func (t *Turret) ShotsFired() int { return t.shots }
