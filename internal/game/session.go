package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/zombierun/sim/internal/core/event"
	"github.com/zombierun/sim/internal/core/pool"
	coresys "github.com/zombierun/sim/internal/core/system"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/scripting"
	"github.com/zombierun/sim/internal/spawn"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

// Options configures one session.
type Options struct {
	Settings *data.Settings
	Scripts  *scripting.Engine // nil: settings damage only
	Rand     *rand.Rand
	TickRate time.Duration

	// ReleaseSpawnOnDeath frees a dead enemy's position for later spawns.
	ReleaseSpawnOnDeath bool
	// Realtime paces ticks with a ticker instead of stepping as fast as possible.
	Realtime bool
}

// Result summarizes a finished round.
type Result struct {
	Outcome     Outcome
	Ticks       uint64
	Elapsed     time.Duration // simulated
	Distance    float64
	Kills       int
	ShotsFired  int
	Hits        int
	DamageTaken int
	Spawned     int
	Respawns    int
}

// Session is the composition root of one game. It owns the bus, the pools,
// the spawn allocator and every manager, and drives them through a system
// runner.
type Session struct {
	bus        *event.Bus
	runner     *coresys.Runner
	tick       time.Duration
	realtime   bool
	roundStart uint64

	lane     *world.Lane
	gm       *Manager
	hp       *HPManager
	car      *Car
	camera   *Camera
	turret   *Turret
	spawner  *SpawnController
	enemies  *EnemyManager
	bulletSy *BulletSystem
	pilot    *Autopilot
	ui       *UI
	journal  *Journal

	enemyPool  *pool.Pool[*Enemy]
	bulletPool *pool.Pool[*Bullet]
	log        *zap.Logger
}

// NewSession builds a session in the Menu state. Subscription order is the
// construction order below.
func NewSession(opts Options, log *zap.Logger) (*Session, error) {
	if opts.Settings == nil {
		return nil, errors.New("session: settings required")
	}
	if opts.TickRate <= 0 {
		return nil, errors.New("session: tick rate must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	st := opts.Settings

	s := &Session{
		bus:      event.NewBus(log),
		runner:   coresys.NewRunner(),
		tick:     opts.TickRate,
		realtime: opts.Realtime,
		log:      log,
	}
	bus := s.bus

	s.lane = world.NewLane(st.Car.StartPosition, st.Game.DistanceBetweenTiles)
	s.lane.Manage(st.Game.MapLength, true)
	event.On(bus, func(event.RestartGameEvent) { s.lane.Manage(st.Game.MapLength, true) })
	event.On(bus, func(event.ContinueGameEvent) { s.lane.Manage(st.Game.MapLength, false) })

	s.gm = NewManager(bus, log.Named("game"))
	s.hp = NewHPManager(bus, s.gm, st.Car.MaxHP, log.Named("hp"))
	s.gm.SetHP(s.hp)

	s.enemyPool = pool.New[*Enemy]("enemies",
		NewEnemyLifecycle(&st.Enemy, bus, opts.Scripts, log),
		st.EnemySpawn.EnemyPoolInitialSize, log.Named("pool"))
	s.bulletPool = pool.New[*Bullet]("bullets",
		NewBulletLifecycle(&st.Weapon, log),
		st.Weapon.PoolSize, log.Named("pool"))

	alloc := spawn.NewAllocator(spawn.Settings{
		TotalPoints:      st.EnemySpawn.SpawnPointCount,
		SideXOffsetRange: st.EnemySpawn.SideXOffsetRange,
		SideZOffsetRange: st.EnemySpawn.SideZOffsetRange,
		MinSpawnDistance: st.EnemySpawn.MinSpawnDistance,
	}, opts.Rand, log.Named("spawn"))
	s.spawner = NewSpawnController(bus, &st.EnemySpawn, alloc, s.lane, s.enemyPool, log.Named("spawn"))

	s.car = NewCar(bus, s.gm, &st.Car, &st.Game, log.Named("car"))
	s.camera = NewCamera(bus, &st.Camera, s.car, log.Named("camera"))
	s.enemies = NewEnemyManager(bus, &st.EnemySpawn, s.enemyPool, s.spawner, s.gm, s.car, s.hp,
		opts.ReleaseSpawnOnDeath, log.Named("enemies"))
	s.turret = NewTurret(bus, &st.Weapon, s.car, s.bulletPool, log.Named("turret"))
	s.pilot = NewAutopilot(bus, s.gm, s.turret, s.car, s.enemies)
	s.ui = NewUI(bus, log.Named("ui"))
	s.journal = NewJournal(bus, s.runner.Ticks)
	s.bulletSy = NewBulletSystem(s.bulletPool, s.enemies, &st.Weapon, opts.Scripts)
	event.On(bus, func(event.RestartGameEvent) { s.newRound() })
	event.On(bus, func(event.ContinueGameEvent) { s.newRound() })

	s.runner.Register(s.pilot)
	s.runner.Register(event.NewDispatchSystem(bus))
	s.runner.Register(&EnemySystem{enemies: s.enemies})
	s.runner.Register(&TurretSystem{turret: s.turret})
	s.runner.Register(&CarSystem{car: s.car})
	s.runner.Register(s.bulletSy)
	s.runner.Register(&CameraSystem{camera: s.camera})
	s.runner.Register(&BulletCleanupSystem{bullets: s.bulletPool})

	bus.LogActiveSubscriptions()
	return s, nil
}

func (s *Session) newRound() {
	s.roundStart = s.runner.Ticks()
	s.bulletSy.hits = 0
}

// Step advances the simulation by one tick.
func (s *Session) Step() { s.runner.Tick(s.tick) }

// RoundTicks is the number of ticks since the current round was set up.
func (s *Session) RoundTicks() uint64 { return s.runner.Ticks() - s.roundStart }

// Run steps until the round ends, the round has run maxTicks ticks (0 = no
// limit) or ctx is cancelled. Cancellation returns the partial result with
// ctx.Err().
func (s *Session) Run(ctx context.Context, maxTicks int) (Result, error) {
	var tick <-chan time.Time
	if s.realtime {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		tick = ticker.C
	}

	for maxTicks <= 0 || s.RoundTicks() < uint64(maxTicks) {
		if tick != nil {
			select {
			case <-ctx.Done():
				return s.Result(OutcomeAborted), ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return s.Result(OutcomeAborted), err
		}

		s.Step()
		if o := s.ui.Outcome(); o != OutcomeNone {
			r := s.Result(o)
			s.log.Info("round finished",
				zap.Stringer("outcome", o),
				zap.Uint64("ticks", r.Ticks),
				zap.Float64("distance", r.Distance),
				zap.Int("kills", r.Kills),
			)
			return r, nil
		}
	}
	s.log.Warn("round hit the tick limit", zap.Int("max_ticks", maxTicks))
	return s.Result(OutcomeTimeout), nil
}

// Result snapshots the round counters with the given outcome.
func (s *Session) Result(o Outcome) Result {
	ticks := s.RoundTicks()
	return Result{
		Outcome:     o,
		Ticks:       ticks,
		Elapsed:     time.Duration(ticks) * s.tick,
		Distance:    s.car.Distance(),
		Kills:       s.enemies.Kills(),
		ShotsFired:  s.turret.ShotsFired(),
		Hits:        s.bulletSy.Hits(),
		DamageTaken: s.hp.DamageTaken(),
		Spawned:     s.spawner.Spawned() + s.enemies.Respawns(),
		Respawns:    s.enemies.Respawns(),
	}
}

// Close drops every subscription and tears down both pools.
func (s *Session) Close() {
	s.bus.Clear()
	s.enemyPool.DestroyAll()
	s.bulletPool.DestroyAll()
}

func (s *Session) Bus() *event.Bus                 { return s.bus }
func (s *Session) Manager() *Manager               { return s.gm }
func (s *Session) HP() *HPManager                  { return s.hp }
func (s *Session) Car() *Car                       { return s.car }
func (s *Session) Camera() *Camera                 { return s.camera }
func (s *Session) Turret() *Turret                 { return s.turret }
func (s *Session) Spawner() *SpawnController       { return s.spawner }
func (s *Session) Enemies() *EnemyManager          { return s.enemies }
func (s *Session) EnemyPool() *pool.Pool[*Enemy]   { return s.enemyPool }
func (s *Session) BulletPool() *pool.Pool[*Bullet] { return s.bulletPool }
func (s *Session) UI() *UI                         { return s.ui }
func (s *Session) Lane() *world.Lane               { return s.lane }
func (s *Session) Journal() *Journal               { return s.journal }
