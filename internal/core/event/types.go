package event

import "fmt"

// Type tags every event kind the game produces. The set is closed: handlers
// are registered per Type and Fire looks them up by the event's Type.
type Type int

const (
	// ReadyGame: player tapped to start. Producer: input. Consumers: spawn, camera.
	ReadyGame Type = iota + 1
	// StartGame: gameplay camera is live, the run begins.
	StartGame
	// RestartGame: restart button on the game-over panel.
	RestartGame
	// ContinueGame: continue button, back to menu on a fresh stretch of lane.
	ContinueGame
	// GameOver: the car was destroyed.
	GameOver
	// CarReachedEnd: the car crossed the end of the level alive.
	CarReachedEnd
	// PlayerDamaged: an enemy hit the car. Payload: amount.
	PlayerDamaged
	// HPChanged: car HP after a change.
	HPChanged
	// GameStateChanged: game manager state transition.
	GameStateChanged
	// TurretRotated: turret angle changed.
	TurretRotated
	// CameraSwitched: active camera changed.
	CameraSwitched
	// EnemySpawned: an enemy was placed on the lane.
	EnemySpawned
	// EnemyDied: an enemy finished its death animation.
	EnemyDied
	// BulletFired: the turret fired.
	BulletFired
)

var typeNames = map[Type]string{
	ReadyGame:        "ReadyGame",
	StartGame:        "StartGame",
	RestartGame:      "RestartGame",
	ContinueGame:     "ContinueGame",
	GameOver:         "GameOver",
	CarReachedEnd:    "CarReachedEnd",
	PlayerDamaged:    "PlayerDamaged",
	HPChanged:        "HPChanged",
	GameStateChanged: "GameStateChanged",
	TurretRotated:    "TurretRotated",
	CameraSwitched:   "CameraSwitched",
	EnemySpawned:     "EnemySpawned",
	EnemyDied:        "EnemyDied",
	BulletFired:      "BulletFired",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Event is implemented by every payload struct below.
type Event interface {
	Type() Type
}

type ReadyGameEvent struct{}
type StartGameEvent struct{}
type RestartGameEvent struct{}
type ContinueGameEvent struct{}
type GameOverEvent struct{}
type CarReachedEndEvent struct{}

type PlayerDamagedEvent struct {
	Amount int
}

type HPChangedEvent struct {
	Current int
	Max     int
}

// Percentage returns Current/Max, or 0 when Max is not positive.
func (e HPChangedEvent) Percentage() float64 {
	if e.Max <= 0 {
		return 0
	}
	return float64(e.Current) / float64(e.Max)
}

// GameStateChangedEvent carries raw state values so this package does not
// depend on the game package.
type GameStateChangedEvent struct {
	Previous int
	Next     int
}

type TurretRotatedEvent struct {
	Angle    float64
	MaxAngle float64
}

type CameraSwitchedEvent struct {
	From int
	To   int
	Name string
}

type EnemySpawnedEvent struct {
	EnemyID    uint64
	SpawnIndex int
	X, Y, Z    float64
}

type EnemyDiedEvent struct {
	EnemyID uint64
	Killed  bool // false when the enemy died after hitting the car
}

type BulletFiredEvent struct {
	Angle float64
}

func (ReadyGameEvent) Type() Type        { return ReadyGame }
func (StartGameEvent) Type() Type        { return StartGame }
func (RestartGameEvent) Type() Type      { return RestartGame }
func (ContinueGameEvent) Type() Type     { return ContinueGame }
func (GameOverEvent) Type() Type         { return GameOver }
func (CarReachedEndEvent) Type() Type    { return CarReachedEnd }
func (PlayerDamagedEvent) Type() Type    { return PlayerDamaged }
func (HPChangedEvent) Type() Type        { return HPChanged }
func (GameStateChangedEvent) Type() Type { return GameStateChanged }
func (TurretRotatedEvent) Type() Type    { return TurretRotated }
func (CameraSwitchedEvent) Type() Type   { return CameraSwitched }
func (EnemySpawnedEvent) Type() Type     { return EnemySpawned }
func (EnemyDiedEvent) Type() Type        { return EnemyDied }
func (BulletFiredEvent) Type() Type      { return BulletFired }
