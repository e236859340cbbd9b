package world

import (
	"math"
	"testing"
)

func TestLaneManageLaysTilesFromStart(t *testing.T) {
	l := NewLane(Vec3{X: 1, Y: 0, Z: 2}, 0.5)
	l.Manage(4, false)

	if l.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", l.Len())
	}
	for i, c := range l.Centers() {
		want := Vec3{X: 1, Z: 2 + float64(i)*0.5}
		if c != want {
			t.Errorf("tile %d at %+v, want %+v", i, c, want)
		}
	}
}

func TestLaneManageContinuesFromFarthestTile(t *testing.T) {
	l := NewLane(Vec3{}, 1)
	l.Manage(3, false) // z = 0, 1, 2
	l.Manage(3, false)

	got := l.Centers()
	if got[0].Z != 2 || got[2].Z != 4 {
		t.Errorf("continued lane = %+v, want z starting at 2", got)
	}

	l.Manage(3, true)
	if l.Centers()[0].Z != 0 {
		t.Errorf("restart should reposition from start, got %+v", l.Centers()[0])
	}
}

func TestLaneManageNeverShrinks(t *testing.T) {
	l := NewLane(Vec3{}, 1)
	l.Manage(5, false)
	l.Manage(2, true)
	if l.Len() != 5 {
		t.Errorf("Len() = %d, want 5", l.Len())
	}
	if l.Tile(5) != nil || l.Tile(-1) != nil {
		t.Error("out-of-range Tile() should be nil")
	}
}

func TestLevelEnd(t *testing.T) {
	if got := LevelEnd(3, 60, 1); got != 62 {
		t.Errorf("LevelEnd = %v, want 62", got)
	}
	if got := LevelEnd(3, 0, 1); got != 3 {
		t.Errorf("LevelEnd with no tiles = %v, want 3", got)
	}
}

func TestVecHelpers(t *testing.T) {
	p := Vec3{X: 1.005, Y: 0.333, Z: -2.4449}.Round2()
	if p.Y != 0.333 || math.Abs(p.Z-(-2.44)) > 1e-9 {
		t.Errorf("Round2 = %+v", p)
	}
	if got := MoveTowards(0, 10, 3); got != 3 {
		t.Errorf("MoveTowards up = %v", got)
	}
	if got := MoveTowards(5, 0, 8); got != 0 {
		t.Errorf("MoveTowards overshoot = %v", got)
	}
	r := Forward.RotateY(90)
	if math.Abs(r.X-1) > 1e-9 || math.Abs(r.Z) > 1e-9 {
		t.Errorf("RotateY(90) = %+v", r)
	}
	if (Vec3{}).Normalized() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}
