package game

import (
	"time"

	"github.com/zombierun/sim/internal/core/pool"
	coresys "github.com/zombierun/sim/internal/core/system"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/scripting"
)

// EnemySystem runs enemy AI and death clips. Phase 2 (Update).
type EnemySystem struct {
	enemies *EnemyManager
}

func (s *EnemySystem) Phase() coresys.Phase    { return coresys.PhaseUpdate }
func (s *EnemySystem) Update(dt time.Duration) { s.enemies.Update(dt) }

// TurretSystem fires the turret. Phase 2 (Update).
type TurretSystem struct {
	turret *Turret
}

func (s *TurretSystem) Phase() coresys.Phase    { return coresys.PhaseUpdate }
func (s *TurretSystem) Update(dt time.Duration) { s.turret.Update(dt) }

// CameraSystem follows the car and completes camera blends. Phase 4 (PostUpdate).
type CameraSystem struct {
	camera *Camera
}

func (s *CameraSystem) Phase() coresys.Phase    { return coresys.PhasePostUpdate }
func (s *CameraSystem) Update(dt time.Duration) { s.camera.Update(dt) }

// CarSystem drives the car on the fixed step. Phase 3 (Physics).
type CarSystem struct {
	car *Car
}

func (s *CarSystem) Phase() coresys.Phase    { return coresys.PhasePhysics }
func (s *CarSystem) Update(dt time.Duration) { s.car.FixedUpdate(dt) }

// BulletSystem moves live bullets and applies hits. A bullet that hit or
// outlived its lifetime is marked spent. Phase 3 (Physics).
type BulletSystem struct {
	bullets *pool.Pool[*Bullet]
	enemies *EnemyManager
	cfg     *data.WeaponSettings
	scripts *scripting.Engine
	hits    int
}

func NewBulletSystem(bullets *pool.Pool[*Bullet], enemies *EnemyManager, cfg *data.WeaponSettings, scripts *scripting.Engine) *BulletSystem {
	return &BulletSystem{bullets: bullets, enemies: enemies, cfg: cfg, scripts: scripts}
}

func (s *BulletSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *BulletSystem) Update(dt time.Duration) {
	s.bullets.EachActive(func(b *Bullet) {
		if b.spent {
			return
		}
		expired := b.Step(dt)
		if e := s.enemies.HitTest(b.Position, s.cfg.HitRadius); e != nil {
			e.TakeDamage(s.scripts.CalcBulletDamage(scripting.BulletContext{
				BaseDamage:     b.Damage(),
				EnemyHealth:    e.Health(),
				EnemyMaxHealth: e.cfg.MaxHealth,
				Distance:       b.Travelled(),
			}))
			s.hits++
			expired = true
		}
		if expired {
			b.spent = true
		}
	})
}

func (s *BulletSystem) Hits() int { return s.hits }

// BulletCleanupSystem returns spent bullets to the pool. Phase 5 (Cleanup).
type BulletCleanupSystem struct {
	bullets *pool.Pool[*Bullet]
}

func (s *BulletCleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *BulletCleanupSystem) Update(_ time.Duration) {
	s.bullets.EachActive(func(b *Bullet) {
		if b.spent {
			_ = s.bullets.Release(b)
		}
	})
}
