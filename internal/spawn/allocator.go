// Package spawn precomputes enemy spawn points over the lane tiles and hands
// them out one at a time, keeping used positions apart.
package spawn

import (
	"math"
	"math/rand"

	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

// maxDrawAttempts bounds one Next call.
const maxDrawAttempts = 100

// Settings is the subset of the enemy spawn asset the allocator reads.
type Settings struct {
	TotalPoints      int
	SideXOffsetRange float64
	SideZOffsetRange float64
	MinSpawnDistance float64
}

// Allocator owns the generated points, the available working set of the
// current batch and the used-position set. Single goroutine only.
type Allocator struct {
	cfg Settings
	rng *rand.Rand
	log *zap.Logger

	points    []world.Vec3
	available []world.Vec3
	used      []world.Vec3
}

func NewAllocator(cfg Settings, rng *rand.Rand, log *zap.Logger) *Allocator {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Allocator{cfg: cfg, rng: rng, log: log}
}

// Generate rebuilds every spawn point from the tile centers. The first tile is
// the car's starting tile and never hosts a spawn point, so fewer than two
// tiles yield no points. The used set is cleared and the available set reset.
// Returns the number of unique points.
func (a *Allocator) Generate(tiles []world.Vec3) int {
	a.used = a.used[:0]
	a.points = a.points[:0]

	target := a.cfg.TotalPoints
	if len(tiles) > 0 && target > 0 {
		perTile := int(math.Ceil(float64(target) / float64(len(tiles))))
		seen := make(map[world.Vec3]struct{}, target)

		for ti := 1; ti < len(tiles) && len(a.points) < target; ti++ {
			center := tiles[ti]
			added := 0
			for attempt := 0; attempt < perTile*3 && added < perTile && len(a.points) < target; attempt++ {
				p := world.Vec3{
					X: center.X + a.jitter(a.cfg.SideXOffsetRange),
					Y: center.Y,
					Z: center.Z + a.jitter(a.cfg.SideZOffsetRange),
				}.Round2()
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				a.points = append(a.points, p)
				added++
			}
		}
		a.shuffle()
	}

	a.resetAvailable()
	a.log.Info("spawn points generated",
		zap.Int("tiles", len(tiles)),
		zap.Int("points", len(a.points)),
		zap.Int("target", target),
	)
	return len(a.points)
}

// jitter returns a uniform offset in [-r, r).
func (a *Allocator) jitter(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return -r + a.rng.Float64()*2*r
}

func (a *Allocator) shuffle() {
	n := len(a.points)
	for i := 0; i < n; i++ {
		j := i + a.rng.Intn(n-i)
		a.points[i], a.points[j] = a.points[j], a.points[i]
	}
}

func (a *Allocator) resetAvailable() {
	a.available = append(a.available[:0], a.points...)
}

// BeginBatch clears the used set and makes every point available again.
func (a *Allocator) BeginBatch() {
	a.used = a.used[:0]
	a.resetAvailable()
}

// Next draws random candidates from the available set until one is at least
// MinSpawnDistance from every used position. Every drawn candidate leaves the
// available set whether it was valid or not. ok is false when the set runs
// dry or the draw budget is spent.
func (a *Allocator) Next() (world.Vec3, bool) {
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		if len(a.available) == 0 {
			a.log.Warn("spawn: no available spawn points", zap.Int("used", len(a.used)))
			return world.Vec3{}, false
		}
		i := a.rng.Intn(len(a.available))
		candidate := a.available[i]
		a.available = append(a.available[:i], a.available[i+1:]...)

		if a.IsValid(candidate) {
			a.used = append(a.used, candidate)
			return candidate, true
		}
	}
	a.log.Warn("spawn: no valid spawn point within attempt budget",
		zap.Int("attempts", maxDrawAttempts),
		zap.Int("used", len(a.used)),
		zap.Int("available", len(a.available)),
	)
	return world.Vec3{}, false
}

// AllocateBatch starts a new batch and draws up to min(n, Len()) positions,
// stopping at the first exhausted draw.
func (a *Allocator) AllocateBatch(n int) []world.Vec3 {
	a.BeginBatch()
	if n > len(a.points) {
		n = len(a.points)
	}
	out := make([]world.Vec3, 0, n)
	for i := 0; i < n; i++ {
		p, ok := a.Next()
		if !ok {
			a.log.Warn("spawn: batch stopped early",
				zap.Int("requested", n),
				zap.Int("allocated", len(out)),
			)
			break
		}
		out = append(out, p)
	}
	return out
}

// IsValid reports whether p keeps MinSpawnDistance from every used position.
func (a *Allocator) IsValid(p world.Vec3) bool {
	for _, u := range a.used {
		if p.Distance(u) < a.cfg.MinSpawnDistance {
			return false
		}
	}
	return true
}

// Claim adds p to the used set if it is valid and reports whether it did.
func (a *Allocator) Claim(p world.Vec3) bool {
	if !a.IsValid(p) {
		return false
	}
	a.used = append(a.used, p)
	return true
}

// Vacate removes one occurrence of p from the used set.
func (a *Allocator) Vacate(p world.Vec3) bool {
	for i, u := range a.used {
		if u == p {
			a.used = append(a.used[:i], a.used[i+1:]...)
			return true
		}
	}
	return false
}

// PointAt returns the i-th generated point in shuffled order.
func (a *Allocator) PointAt(i int) (world.Vec3, bool) {
	if i < 0 || i >= len(a.points) {
		return world.Vec3{}, false
	}
	return a.points[i], true
}

func (a *Allocator) Points() []world.Vec3 { return append([]world.Vec3(nil), a.points...) }
func (a *Allocator) Used() []world.Vec3   { return append([]world.Vec3(nil), a.used...) }
func (a *Allocator) Len() int             { return len(a.points) }
func (a *Allocator) UsedCount() int       { return len(a.used) }
func (a *Allocator) AvailableCount() int  { return len(a.available) }
