package game

import (
	"errors"
	"time"

	"github.com/zombierun/sim/internal/core/pool"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

// Bullet is a pooled projectile fired by the turret.
type Bullet struct {
	ID        uint64
	Position  world.Vec3
	Direction world.Vec3

	speed     float64
	damage    int
	lifetime  time.Duration
	age       time.Duration
	travelled float64
	active    bool
	spent     bool
}

// Launch starts the bullet at origin along dir.
func (b *Bullet) Launch(origin, dir world.Vec3, speed float64, damage int, lifetime time.Duration) {
	b.Position = origin
	b.Direction = dir.Normalized()
	if b.Direction.IsZero() {
		b.Direction = world.Forward
	}
	b.speed = speed
	b.damage = damage
	b.lifetime = lifetime
	b.age = 0
	b.travelled = 0
	b.active = true
	b.spent = false
}

// Step moves the bullet and reports whether its lifetime has run out.
func (b *Bullet) Step(dt time.Duration) (expired bool) {
	if !b.active {
		return true
	}
	d := b.speed * dt.Seconds()
	b.Position = b.Position.Add(b.Direction.Scale(d))
	b.travelled += d
	b.age += dt
	return b.age >= b.lifetime
}

func (b *Bullet) reset() {
	b.active = false
	b.spent = false
	b.age = 0
	b.travelled = 0
	b.Direction = world.Forward
}

func (b *Bullet) Damage() int        { return b.damage }
func (b *Bullet) Travelled() float64 { return b.travelled }
func (b *Bullet) Age() time.Duration { return b.age }
func (b *Bullet) IsActive() bool     { return b.active }
func (b *Bullet) IsSpent() bool      { return b.spent }

// BulletLifecycle creates and recycles bullets for the bullet pool.
type BulletLifecycle struct {
	cfg    *data.WeaponSettings
	nextID uint64
	log    *zap.Logger
}

func NewBulletLifecycle(cfg *data.WeaponSettings, log *zap.Logger) *BulletLifecycle {
	return &BulletLifecycle{cfg: cfg, log: log}
}

func (l *BulletLifecycle) OnCreate() (*Bullet, error) {
	if l.cfg == nil {
		return nil, errors.New("weapon settings missing")
	}
	l.nextID++
	return &Bullet{ID: l.nextID, Direction: world.Forward}, nil
}

func (l *BulletLifecycle) OnGet(b *Bullet) error {
	b.reset()
	return nil
}

func (l *BulletLifecycle) OnRelease(b *Bullet) { b.reset() }

func (l *BulletLifecycle) OnDestroy(b *Bullet) {
	b.reset()
	l.log.Debug("bullet destroyed", zap.Uint64("bullet", b.ID))
}

var _ pool.Lifecycle[*Bullet] = (*BulletLifecycle)(nil)
