package world

import "math"

// Tile is one ground segment of the lane.
type Tile struct {
	Index    int
	Position Vec3
}

// Lane owns the ordered ground tiles the car drives over. Tile 0 is the car's
// starting tile; later tiles extend along +Z.
type Lane struct {
	start   Vec3
	spacing float64
	tiles   []*Tile
}

func NewLane(start Vec3, spacing float64) *Lane {
	return &Lane{
		start:   start,
		spacing: spacing,
		tiles:   make([]*Tile, 0, 64),
	}
}

// Manage grows the lane to at least requiredCount tiles and lays every tile out
// again. On restart (or when the lane was empty) tiles start from the lane
// start; otherwise they continue from the farthest tile, so a continued run
// drives on fresh ground.
func (l *Lane) Manage(requiredCount int, restart bool) {
	origin := l.repositionOrigin(restart)
	for len(l.tiles) < requiredCount {
		l.tiles = append(l.tiles, &Tile{Index: len(l.tiles)})
	}
	for i, t := range l.tiles {
		t.Position = origin.Add(Forward.Scale(float64(i) * l.spacing))
	}
}

func (l *Lane) repositionOrigin(restart bool) Vec3 {
	if restart || len(l.tiles) == 0 {
		return l.start
	}
	maxZ := math.Inf(-1)
	for _, t := range l.tiles {
		if t.Position.Z > maxZ {
			maxZ = t.Position.Z
		}
	}
	return Vec3{X: l.start.X, Y: l.start.Y, Z: maxZ}
}

// Len returns the number of tiles.
func (l *Lane) Len() int { return len(l.tiles) }

// Centers returns the tile positions in lane order.
func (l *Lane) Centers() []Vec3 {
	out := make([]Vec3, len(l.tiles))
	for i, t := range l.tiles {
		out[i] = t.Position
	}
	return out
}

// Tile returns the tile at index i, or nil.
func (l *Lane) Tile(i int) *Tile {
	if i < 0 || i >= len(l.tiles) {
		return nil
	}
	return l.tiles[i]
}

// LevelEnd returns the Z the car has to reach to finish the level when it
// starts at startZ.
func LevelEnd(startZ float64, mapLength int, tileLength float64) float64 {
	if mapLength < 1 {
		return startZ
	}
	return startZ + float64(mapLength-1)*tileLength
}
