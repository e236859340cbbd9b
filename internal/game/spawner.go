package game

import (
	"github.com/zombierun/sim/internal/core/event"
	"github.com/zombierun/sim/internal/core/pool"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/spawn"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

// SpawnController places the initial wave of enemies at allocated spawn
// points when the game gets ready, and regenerates the points on restart
// and continue.
type SpawnController struct {
	bus     *event.Bus
	cfg     *data.EnemySpawnSettings
	alloc   *spawn.Allocator
	lane    *world.Lane
	enemies *pool.Pool[*Enemy]
	spawned int
	log     *zap.Logger
}

// NewSpawnController generates the first set of points from the lane.
func NewSpawnController(bus *event.Bus, cfg *data.EnemySpawnSettings, alloc *spawn.Allocator, lane *world.Lane, enemies *pool.Pool[*Enemy], log *zap.Logger) *SpawnController {
	s := &SpawnController{bus: bus, cfg: cfg, alloc: alloc, lane: lane, enemies: enemies, log: log}
	s.Regenerate()

	event.On(bus, func(event.ReadyGameEvent) { s.SpawnInitial() })
	event.On(bus, func(event.RestartGameEvent) { s.Regenerate() })
	event.On(bus, func(event.ContinueGameEvent) { s.Regenerate() })
	return s
}

// Regenerate clears the used positions, rebuilds every spawn point and
// starts a new spawn count.
func (s *SpawnController) Regenerate() int {
	s.spawned = 0
	return s.alloc.Generate(s.lane.Centers())
}

// SpawnInitial allocates min(TotalEnemyCount, points) positions and places a
// pooled enemy at each. Returns how many enemies were placed.
func (s *SpawnController) SpawnInitial() int {
	want := min(s.cfg.TotalEnemyCount, s.alloc.Len())
	positions := s.alloc.AllocateBatch(want)

	placed := 0
	for _, p := range positions {
		e, _, ok := s.enemies.Get()
		if !ok {
			s.log.Warn("enemy pool could not provide an enemy",
				zap.Int("placed", placed),
				zap.Int("wanted", want),
			)
			break
		}
		e.Position = p
		e.SpawnPos = p
		e.SpawnIndex = -1
		placed++
		s.bus.Fire(event.EnemySpawnedEvent{EnemyID: e.ID, SpawnIndex: -1, X: p.X, Y: p.Y, Z: p.Z})
	}
	s.spawned += placed
	s.log.Info("initial enemies spawned",
		zap.Int("placed", placed),
		zap.Int("wanted", want),
		zap.Int("points", s.alloc.Len()),
	)
	return placed
}

// PointAt exposes the shuffled spawn point list for respawns.
func (s *SpawnController) PointAt(i int) (world.Vec3, bool) { return s.alloc.PointAt(i) }

// Vacate frees a used position.
func (s *SpawnController) Vacate(p world.Vec3) bool { return s.alloc.Vacate(p) }

// Claim marks p used when it keeps the minimum distance from every used
// position.
func (s *SpawnController) Claim(p world.Vec3) bool { return s.alloc.Claim(p) }

// UsedCount returns how many positions are marked used.
func (s *SpawnController) UsedCount() int { return s.alloc.UsedCount() }

func (s *SpawnController) Spawned() int { return s.spawned }
