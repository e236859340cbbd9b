package game

import (
	"time"

	"github.com/zombierun/sim/internal/core/event"
	"github.com/zombierun/sim/internal/core/pool"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

type trackedEnemy struct {
	enemy  *Enemy
	handle pool.Handle
}

// EnemyManager tracks the enemies of a running round. A dead enemy is
// respawned at the next queued spawn index while the queue lasts, otherwise
// it goes back to the pool.
type EnemyManager struct {
	bus     *event.Bus
	cfg     *data.EnemySpawnSettings
	enemies *pool.Pool[*Enemy]
	spawner *SpawnController
	gm      *Manager
	car     *Car
	hp      *HPManager

	active         map[uint64]trackedEnemy
	queue          []int
	releaseOnDeath bool

	kills    int
	respawns int
	log      *zap.Logger
}

// NewEnemyManager wires the manager to the bus. With releaseOnDeath set, the
// used set follows the living enemies: a dead enemy's spawn position is
// vacated and a respawn must claim a valid position, skipping queued points
// that are too close to a living enemy's spawn position.
func NewEnemyManager(bus *event.Bus, cfg *data.EnemySpawnSettings, enemies *pool.Pool[*Enemy], spawner *SpawnController, gm *Manager, car *Car, hp *HPManager, releaseOnDeath bool, log *zap.Logger) *EnemyManager {
	m := &EnemyManager{
		bus:            bus,
		cfg:            cfg,
		enemies:        enemies,
		spawner:        spawner,
		gm:             gm,
		car:            car,
		hp:             hp,
		active:         make(map[uint64]trackedEnemy),
		releaseOnDeath: releaseOnDeath,
		log:            log,
	}
	m.initQueue()

	event.On(bus, func(event.StartGameEvent) { m.trackActive() })
	event.On(bus, func(e event.EnemyDiedEvent) { m.handleDeath(e) })
	event.On(bus, func(event.GameOverEvent) { m.endRound() })
	event.On(bus, func(event.CarReachedEndEvent) { m.endRound() })
	event.On(bus, func(event.RestartGameEvent) { m.newRound() })
	event.On(bus, func(event.ContinueGameEvent) { m.newRound() })
	return m
}

// initQueue fills the respawn queue with the spawn indices past the initial
// wave: [TotalEnemyCount, SpawnPointCount).
func (m *EnemyManager) initQueue() {
	m.queue = m.queue[:0]
	for i := m.cfg.TotalEnemyCount; i < m.cfg.SpawnPointCount; i++ {
		m.queue = append(m.queue, i)
	}
}

func (m *EnemyManager) newRound() {
	m.initQueue()
	m.kills = 0
	m.respawns = 0
}

func (m *EnemyManager) trackActive() {
	m.enemies.EachActive(func(e *Enemy) {
		h, ok := m.enemies.HandleOf(e)
		if !ok {
			return
		}
		m.active[e.ID] = trackedEnemy{enemy: e, handle: h}
	})
	m.log.Info("tracking enemies",
		zap.Int("active", len(m.active)),
		zap.Int("respawn_queue", len(m.queue)),
	)
}

func (m *EnemyManager) handleDeath(ev event.EnemyDiedEvent) {
	t, ok := m.active[ev.EnemyID]
	if !ok || !m.enemies.Valid(t.handle) {
		// Released since the death was announced.
		return
	}
	if ev.Killed {
		m.kills++
	}
	if m.releaseOnDeath {
		m.spawner.Vacate(t.enemy.SpawnPos)
	}
	if idx, p, ok := m.nextSpawn(); ok {
		m.respawn(t, idx, p)
		return
	}
	m.deactivate(t)
}

// nextSpawn pops queued spawn indices until one yields a usable point.
// Skipped indices are dropped from the queue.
func (m *EnemyManager) nextSpawn() (int, world.Vec3, bool) {
	for len(m.queue) > 0 {
		idx := m.queue[0]
		m.queue = m.queue[1:]

		p, ok := m.spawner.PointAt(idx)
		if !ok {
			continue
		}
		if m.releaseOnDeath && !m.spawner.Claim(p) {
			m.log.Debug("respawn point too close, skipped", zap.Int("spawn_index", idx))
			continue
		}
		return idx, p, true
	}
	return 0, world.Vec3{}, false
}

func (m *EnemyManager) respawn(t trackedEnemy, idx int, p world.Vec3) {
	t.enemy.Position = p
	if err := t.enemy.Init(); err != nil {
		m.log.Error("enemy respawn failed", zap.Uint64("enemy", t.enemy.ID), zap.Error(err))
		if m.releaseOnDeath {
			m.spawner.Vacate(p)
		}
		m.deactivate(t)
		return
	}
	t.enemy.SpawnIndex = idx
	t.enemy.SpawnPos = p
	m.respawns++
	m.log.Debug("enemy respawned", zap.Uint64("enemy", t.enemy.ID), zap.Int("spawn_index", idx))
	m.bus.Fire(event.EnemySpawnedEvent{EnemyID: t.enemy.ID, SpawnIndex: idx, X: p.X, Y: p.Y, Z: p.Z})
}

func (m *EnemyManager) deactivate(t trackedEnemy) {
	delete(m.active, t.enemy.ID)
	if err := m.enemies.Release(t.enemy); err != nil {
		m.log.Error("enemy release failed", zap.Uint64("enemy", t.enemy.ID), zap.Error(err))
	}
}

func (m *EnemyManager) endRound() {
	n := m.enemies.ReleaseAll()
	clear(m.active)
	m.queue = m.queue[:0]
	m.log.Info("round over, enemies released", zap.Int("released", n))
}

// Update runs enemy AI while the round is playing. Enemies that finish dying
// fire EnemyDied from inside this loop.
func (m *EnemyManager) Update(dt time.Duration) {
	if m.gm.State() != StatePlaying {
		return
	}
	target := m.car.Position()
	hp, maxHP, speed := m.hp.Current(), m.hp.Max(), m.car.Speed()
	m.enemies.EachActive(func(e *Enemy) {
		e.Update(dt, target, hp, maxHP, speed)
	})
}

// Nearest returns the closest alive enemy to p for which keep returns true.
func (m *EnemyManager) Nearest(p world.Vec3, keep func(*Enemy) bool) *Enemy {
	var best *Enemy
	bestDist := 0.0
	m.enemies.EachActive(func(e *Enemy) {
		if !e.IsAlive() || (keep != nil && !keep(e)) {
			return
		}
		d := e.Position.Flat().Distance(p.Flat())
		if best == nil || d < bestDist {
			best, bestDist = e, d
		}
	})
	return best
}

// HitTest returns the first alive enemy within radius of p, or nil.
func (m *EnemyManager) HitTest(p world.Vec3, radius float64) *Enemy {
	var hit *Enemy
	m.enemies.EachActive(func(e *Enemy) {
		if hit == nil && e.IsAlive() && e.Position.Flat().Distance(p.Flat()) <= radius {
			hit = e
		}
	})
	return hit
}

func (m *EnemyManager) ActiveCount() int { return len(m.active) }
func (m *EnemyManager) QueueLen() int    { return len(m.queue) }
func (m *EnemyManager) Kills() int       { return m.kills }
func (m *EnemyManager) Respawns() int    { return m.respawns }
