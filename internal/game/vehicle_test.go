package game

import (
	"math"
	"testing"
	"time"

	"github.com/zombierun/sim/internal/core/event"
	"github.com/zombierun/sim/internal/core/pool"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
)

type rig struct {
	bus     *event.Bus
	gm      *Manager
	car     *Car
	turret  *Turret
	camera  *Camera
	bullets *pool.Pool[*Bullet]
	st      *data.Settings
}

func newRig(t *testing.T, tweak func(*data.Settings)) *rig {
	t.Helper()
	st := data.DefaultSettings()
	if tweak != nil {
		tweak(st)
	}
	log := zap.NewNop()
	r := &rig{bus: event.NewBus(log), st: st}
	r.gm = NewManager(r.bus, log)
	r.bullets = pool.New[*Bullet]("bullets", NewBulletLifecycle(&st.Weapon, log), st.Weapon.PoolSize, log)
	r.car = NewCar(r.bus, r.gm, &st.Car, &st.Game, log)
	r.camera = NewCamera(r.bus, &st.Camera, r.car, log)
	r.turret = NewTurret(r.bus, &st.Weapon, r.car, r.bullets, log)
	t.Cleanup(r.bullets.DestroyAll)
	return r
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCarReachesTheLevelEnd(t *testing.T) {
	r := newRig(t, func(st *data.Settings) {
		st.Game.MapLength = 3
		st.Car.Acceleration = 100
	})
	reached := 0
	event.On(r.bus, func(event.CarReachedEndEvent) { reached++ })

	r.bus.Fire(event.StartGameEvent{})
	if !r.car.IsMoving() || r.car.LevelEnd() != 2 {
		t.Fatalf("moving=%v level end=%v", r.car.IsMoving(), r.car.LevelEnd())
	}

	dt := 100 * time.Millisecond
	r.car.FixedUpdate(dt)
	if !almostEqual(r.car.Speed(), 10) || !almostEqual(r.car.Position().Z, 1) {
		t.Fatalf("after one step speed=%v z=%v", r.car.Speed(), r.car.Position().Z)
	}
	r.car.FixedUpdate(dt)
	if r.gm.State() != StateVictory || reached != 1 {
		t.Fatalf("state=%v reached=%d", r.gm.State(), reached)
	}

	for range 20 {
		r.car.FixedUpdate(dt)
	}
	if r.car.IsMoving() || r.car.Speed() != 0 {
		t.Errorf("car did not brake to a stop: speed %v", r.car.Speed())
	}
	if reached != 1 {
		t.Errorf("CarReachedEnd fired %d times", reached)
	}
	if r.car.Distance() < 2 {
		t.Errorf("Distance = %v", r.car.Distance())
	}

	r.bus.Fire(event.RestartGameEvent{})
	if r.car.Position() != r.st.Car.StartPosition || r.car.IsMoving() {
		t.Errorf("restart left the car at %+v", r.car.Position())
	}
}

func TestCarStopsOnGameOver(t *testing.T) {
	r := newRig(t, nil)
	r.bus.Fire(event.StartGameEvent{})
	r.car.FixedUpdate(time.Second)
	z := r.car.Position().Z
	r.gm.EndGame(false)
	r.car.FixedUpdate(time.Second)
	if r.car.IsMoving() || r.car.Position().Z != z {
		t.Errorf("car kept driving after game over")
	}

	r.bus.Fire(event.ContinueGameEvent{})
	if r.car.Position().Z != z {
		t.Errorf("continue moved the car to %v", r.car.Position().Z)
	}
}

func TestTurretDragClamps(t *testing.T) {
	r := newRig(t, nil)
	dt := 20 * time.Millisecond
	var rotated []float64
	event.On(r.bus, func(e event.TurretRotatedEvent) { rotated = append(rotated, e.Angle) })

	r.turret.Drag(10, dt)
	if r.turret.Angle() != 0 || len(rotated) != 0 {
		t.Fatal("disabled turret rotated")
	}

	r.bus.Fire(event.StartGameEvent{})
	tests := []struct {
		name  string
		delta float64
		want  float64
	}{
		// sensitivity 10 * speed 150 * 0.02s * 0.01 = 0.3 degrees per unit
		{"small right", 10, 3},
		{"small left", -20, -3},
		{"clamp right", 10000, 90},
		{"clamp left", -10000, -90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.turret.Drag(tt.delta, dt)
			if !almostEqual(r.turret.Angle(), tt.want) {
				t.Errorf("Angle = %v, want %v", r.turret.Angle(), tt.want)
			}
		})
	}
	if len(rotated) != len(tests) {
		t.Errorf("TurretRotated fired %d times", len(rotated))
	}

	r.turret.ResetRotation()
	d := r.turret.DragFor(45, dt)
	r.turret.Drag(d, dt)
	if !almostEqual(r.turret.Angle(), 45) {
		t.Errorf("DragFor(45) turned to %v", r.turret.Angle())
	}

	r.gm.EndGame(false)
	if r.turret.IsEnabled() || r.turret.Angle() != 0 {
		t.Errorf("game over left turret enabled=%v angle=%v", r.turret.IsEnabled(), r.turret.Angle())
	}
}

func TestTurretFiresAtFireRate(t *testing.T) {
	r := newRig(t, nil)
	r.bus.Fire(event.StartGameEvent{})

	for range 10 {
		r.turret.Update(100 * time.Millisecond)
	}
	if r.turret.ShotsFired() != 2 || r.bullets.ActiveCount() != 2 {
		t.Errorf("shots=%d active bullets=%d, want 2", r.turret.ShotsFired(), r.bullets.ActiveCount())
	}

	r.bus.Fire(event.CarReachedEndEvent{})
	if r.bullets.ActiveCount() != 0 {
		t.Errorf("bullets left after the round: %d", r.bullets.ActiveCount())
	}
	r.turret.Update(time.Second)
	if r.turret.ShotsFired() != 2 {
		t.Error("disabled turret fired")
	}
}

func TestTurretReusesBullets(t *testing.T) {
	r := newRig(t, nil)
	r.bus.Fire(event.StartGameEvent{})
	owned := r.bullets.Len()
	for range 3 {
		r.turret.Update(time.Second)
		r.bullets.ReleaseAll()
	}
	if r.turret.ShotsFired() != 3 || r.bullets.Len() != owned {
		t.Errorf("shots=%d owned=%d, want 3 shots from %d bullets", r.turret.ShotsFired(), r.bullets.Len(), owned)
	}
}

func TestBulletLifetime(t *testing.T) {
	var b Bullet
	b.Launch(world.Vec3{}, world.Vec3{X: 2}, 10, 5, 300*time.Millisecond)
	if b.Direction != (world.Vec3{X: 1}) || !b.IsActive() {
		t.Fatalf("launched bullet %+v", b)
	}
	if b.Step(100 * time.Millisecond) {
		t.Fatal("expired after the first step")
	}
	b.Step(100 * time.Millisecond)
	if !b.Step(100 * time.Millisecond) {
		t.Error("not expired after its lifetime")
	}
	if !almostEqual(b.Travelled(), 3) || !almostEqual(b.Position.X, 3) {
		t.Errorf("travelled %v to %+v", b.Travelled(), b.Position)
	}

	b.Launch(world.Vec3{}, world.Vec3{}, 1, 1, time.Second)
	if b.Direction != world.Forward {
		t.Errorf("zero direction launched along %+v", b.Direction)
	}
}

func TestCameraBlendStartsTheGame(t *testing.T) {
	r := newRig(t, nil)
	starts := 0
	var switched []event.CameraSwitchedEvent
	event.On(r.bus, func(event.StartGameEvent) { starts++ })
	event.On(r.bus, func(e event.CameraSwitchedEvent) { switched = append(switched, e) })

	if r.camera.Current() != CameraMenu || r.camera.Priority(CameraMenu) != activePriority {
		t.Fatalf("initial camera %v", r.camera.Current())
	}

	r.bus.Fire(event.ReadyGameEvent{})
	if r.camera.Current() != CameraGameplay || !r.camera.IsBlending() {
		t.Fatalf("ReadyGame: camera %v blending %v", r.camera.Current(), r.camera.IsBlending())
	}
	if r.camera.Priority(CameraGameplay) != activePriority || r.camera.Priority(CameraMenu) != basePriority {
		t.Error("priorities not swapped")
	}

	dt := 20 * time.Millisecond
	for range 24 {
		r.camera.Update(dt)
	}
	if starts != 0 {
		t.Fatal("StartGame fired before the transition finished")
	}
	r.camera.Update(dt)
	if starts != 1 || r.gm.State() != StatePlaying {
		t.Fatalf("starts=%d state=%v", starts, r.gm.State())
	}
	for range 50 {
		r.camera.Update(dt)
	}
	if starts != 1 {
		t.Errorf("StartGame fired %d times", starts)
	}

	r.gm.EndGame(false)
	r.bus.Fire(event.RestartGameEvent{})
	want := []CameraKind{CameraGameplay, CameraGameOver, CameraMenu}
	if len(switched) != len(want) {
		t.Fatalf("switches = %+v", switched)
	}
	for i, k := range want {
		if CameraKind(switched[i].To) != k || switched[i].Name != k.String() {
			t.Errorf("switch %d = %+v, want %v", i, switched[i], k)
		}
	}
}

func TestCameraFollowsTheCar(t *testing.T) {
	r := newRig(t, nil)
	r.bus.Fire(event.StartGameEvent{})
	for range 100 {
		r.car.FixedUpdate(20 * time.Millisecond)
		r.camera.Update(20 * time.Millisecond)
	}
	want := r.car.Position().Add(r.st.Camera.Offset)
	if r.camera.Position().Distance(want) > 10 {
		t.Errorf("camera at %+v, car view at %+v", r.camera.Position(), want)
	}
	if r.camera.Position().Z <= r.st.Camera.Offset.Z {
		t.Error("camera did not move")
	}
}
