package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/zombierun/sim/internal/core/event"
	"github.com/zombierun/sim/internal/core/pool"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/scripting"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

// EnemyState is the life cycle of one activation of an enemy.
type EnemyState int

const (
	EnemyAlive EnemyState = iota
	EnemyDyingAnimating
	EnemyDead
)

func (s EnemyState) String() string {
	switch s {
	case EnemyAlive:
		return "alive"
	case EnemyDyingAnimating:
		return "dying"
	case EnemyDead:
		return "dead"
	}
	return "unknown"
}

const clipDeath = "death"

// Animation is a one-shot clip advanced by the tick. Normalized time reaches
// 1.0 when the clip has played once.
type Animation struct {
	Clip     string
	Duration time.Duration
	elapsed  time.Duration
}

func (a *Animation) Advance(dt time.Duration) { a.elapsed += dt }

// NormalizedTime is elapsed/duration; a zero-length clip is complete at once.
func (a *Animation) NormalizedTime() float64 {
	if a.Duration <= 0 {
		return 1
	}
	return float64(a.elapsed) / float64(a.Duration)
}

// Enemy is a pooled zombie. It chases the car inside its aggro radius, hits it
// once on contact and dies after its death clip has played.
type Enemy struct {
	ID         uint64
	Position   world.Vec3
	Heading    float64 // degrees around Y
	SpawnIndex int
	SpawnPos   world.Vec3 // where the enemy was placed, not where it is

	state    EnemyState
	health   int
	chasing  bool
	attacked bool
	killed   bool
	anim     *Animation

	cfg     *data.EnemySettings
	bus     *event.Bus
	scripts *scripting.Engine
}

// Init prepares a fresh activation. It fails when the enemy has no settings
// or no bus to report to.
func (e *Enemy) Init() error {
	if e.cfg == nil {
		return errors.New("enemy settings missing")
	}
	if e.bus == nil {
		return errors.New("enemy event bus missing")
	}
	if e.cfg.MaxHealth <= 0 {
		return fmt.Errorf("enemy max health %d", e.cfg.MaxHealth)
	}
	e.Reset()
	return nil
}

// Reset clears every per-activation flag. A pending death clip is dropped.
func (e *Enemy) Reset() {
	e.state = EnemyAlive
	e.chasing = false
	e.attacked = false
	e.killed = false
	e.anim = nil
	e.Heading = 0
	if e.cfg != nil {
		e.health = e.cfg.MaxHealth
	}
}

// Update runs one tick of AI toward target (the car position) and advances
// the death clip while dying.
func (e *Enemy) Update(dt time.Duration, target world.Vec3, carHP, carMaxHP int, carSpeed float64) {
	switch e.state {
	case EnemyDead:
		return
	case EnemyDyingAnimating:
		e.anim.Advance(dt)
		if e.anim.NormalizedTime() >= 1 {
			e.AnimationFinished(e.anim.Clip)
		}
		return
	}

	dist := e.Position.Flat().Distance(target.Flat())
	switch {
	case dist <= e.cfg.AggroRadius:
		e.chasing = true
		e.chase(dt, target)
	case e.chasing:
		// Losing the car is fatal.
		e.chasing = false
		e.startDying()
		return
	}

	if !e.attacked && e.Position.Flat().Distance(target.Flat()) <= e.cfg.ContactRadius {
		e.attack(carHP, carMaxHP, carSpeed)
	}
}

func (e *Enemy) chase(dt time.Duration, target world.Vec3) {
	dir := target.Sub(e.Position).Flat().Normalized()
	if dir.IsZero() {
		return
	}
	e.Position = e.Position.Add(dir.Scale(e.cfg.MoveSpeed * dt.Seconds()))

	want := world.Heading(dir)
	step := e.cfg.RotationSpeed * dt.Seconds()
	if step >= 1 {
		e.Heading = want
	} else {
		e.Heading += world.DeltaAngle(e.Heading, want) * step
	}
}

// attack posts the damage so it is processed at the next event flush.
func (e *Enemy) attack(carHP, carMaxHP int, carSpeed float64) {
	e.attacked = true
	dmg := e.scripts.CalcEnemyDamage(scripting.EnemyContext{
		BaseDamage: e.cfg.Damage,
		CarHP:      carHP,
		CarMaxHP:   carMaxHP,
		CarSpeed:   carSpeed,
	})
	e.bus.Post(event.PlayerDamagedEvent{Amount: dmg})
	e.startDying()
}

// TakeDamage lowers health, clamped at 0. Reaching 0 starts dying.
func (e *Enemy) TakeDamage(n int) {
	if e.state != EnemyAlive || n <= 0 {
		return
	}
	e.health = max(0, e.health-n)
	if e.health == 0 {
		e.killed = true
		e.startDying()
	}
}

func (e *Enemy) startDying() {
	if e.state != EnemyAlive {
		return
	}
	e.chasing = false
	e.state = EnemyDyingAnimating
	e.anim = &Animation{Clip: clipDeath, Duration: e.cfg.DeathAnimation}
}

// AnimationFinished delivers the end of a clip. Only the death clip of a
// dying enemy has an effect: the enemy becomes Dead and EnemyDied is fired.
func (e *Enemy) AnimationFinished(clip string) {
	if e.state != EnemyDyingAnimating || clip != clipDeath {
		return
	}
	e.state = EnemyDead
	e.anim = nil
	e.bus.Fire(event.EnemyDiedEvent{EnemyID: e.ID, Killed: e.killed})
}

func (e *Enemy) State() EnemyState { return e.state }
func (e *Enemy) Health() int       { return e.health }
func (e *Enemy) IsChasing() bool   { return e.chasing }
func (e *Enemy) HasAttacked() bool { return e.attacked }
func (e *Enemy) IsAlive() bool     { return e.state == EnemyAlive }

// EnemyLifecycle creates and recycles enemies for the enemy pool.
type EnemyLifecycle struct {
	cfg     *data.EnemySettings
	bus     *event.Bus
	scripts *scripting.Engine
	nextID  uint64
	log     *zap.Logger
}

func NewEnemyLifecycle(cfg *data.EnemySettings, bus *event.Bus, scripts *scripting.Engine, log *zap.Logger) *EnemyLifecycle {
	return &EnemyLifecycle{cfg: cfg, bus: bus, scripts: scripts, log: log}
}

func (l *EnemyLifecycle) OnCreate() (*Enemy, error) {
	if l.cfg == nil {
		return nil, errors.New("enemy settings missing")
	}
	l.nextID++
	return &Enemy{ID: l.nextID, cfg: l.cfg, bus: l.bus, scripts: l.scripts}, nil
}

func (l *EnemyLifecycle) OnGet(e *Enemy) error { return e.Init() }

func (l *EnemyLifecycle) OnRelease(e *Enemy) {
	e.Reset()
	e.SpawnIndex = -1
	e.SpawnPos = world.Vec3{}
}

func (l *EnemyLifecycle) OnDestroy(e *Enemy) {
	e.anim = nil
	e.bus = nil
	l.log.Debug("enemy destroyed", zap.Uint64("enemy", e.ID))
}

var _ pool.Lifecycle[*Enemy] = (*EnemyLifecycle)(nil)
