package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zombierun/sim/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings wraps every validation failure of a settings asset.
var ErrInvalidSettings = errors.New("invalid settings")

// EnemySpawnSettings controls how many enemies exist and where they may spawn.
type EnemySpawnSettings struct {
	TotalEnemyCount      int     `yaml:"total_enemy_count"`
	SpawnPointCount      int     `yaml:"spawn_point_count"`
	EnemyPoolInitialSize int     `yaml:"enemy_pool_initial_size"`
	SideXOffsetRange     float64 `yaml:"side_x_offset_range"`
	SideZOffsetRange     float64 `yaml:"side_z_offset_range"`
	MinSpawnDistance     float64 `yaml:"min_spawn_distance"`
}

// EnemySettings holds per-enemy AI and combat values.
type EnemySettings struct {
	AggroRadius    float64       `yaml:"aggro_radius"`
	MoveSpeed      float64       `yaml:"move_speed"`
	RotationSpeed  float64       `yaml:"rotation_speed"`
	Damage         int           `yaml:"damage"`
	MaxHealth      int           `yaml:"max_health"`
	ContactRadius  float64       `yaml:"contact_radius"`
	DeathAnimation time.Duration `yaml:"death_animation"`
}

type CarSettings struct {
	StartPosition world.Vec3 `yaml:"start_position"`
	Speed         float64    `yaml:"speed"`
	Acceleration  float64    `yaml:"acceleration"`
	Deceleration  float64    `yaml:"deceleration"`
	MaxHP         int        `yaml:"max_hp"`
}

type GameSettings struct {
	MapLength            int     `yaml:"map_length"`
	DistanceBetweenTiles float64 `yaml:"distance_between_tiles"`
	TileLength           float64 `yaml:"tile_length"` // tile scale along the lane, used for the level end
}

type WeaponSettings struct {
	FireRate         time.Duration `yaml:"fire_rate"`
	BulletSpeed      float64       `yaml:"bullet_speed"`
	BulletDamage     int           `yaml:"bullet_damage"`
	BulletLifetime   time.Duration `yaml:"bullet_lifetime"`
	HitRadius        float64       `yaml:"hit_radius"`
	PoolSize         int           `yaml:"pool_size"`
	MaxRotationAngle float64       `yaml:"max_rotation_angle"`
	RotationSpeed    float64       `yaml:"rotation_speed"`
	InputSensitivity float64       `yaml:"input_sensitivity"`
}

type CameraSettings struct {
	FollowSpeed float64       `yaml:"follow_speed"`
	Offset      world.Vec3    `yaml:"offset"`
	Transition  time.Duration `yaml:"transition"`
}

// Settings bundles every settings asset of one game.
type Settings struct {
	EnemySpawn EnemySpawnSettings
	Enemy      EnemySettings
	Car        CarSettings
	Game       GameSettings
	Weapon     WeaponSettings
	Camera     CameraSettings
}

// DefaultSettings returns the built-in tuning that missing assets fall back
// to. The assets under data/yaml ship a gentler round.
func DefaultSettings() *Settings {
	return &Settings{
		EnemySpawn: EnemySpawnSettings{
			TotalEnemyCount:      50,
			SpawnPointCount:      100,
			EnemyPoolInitialSize: 60,
			SideXOffsetRange:     2,
			SideZOffsetRange:     2,
			MinSpawnDistance:     2,
		},
		Enemy: EnemySettings{
			AggroRadius:    10,
			MoveSpeed:      5,
			RotationSpeed:  5,
			Damage:         25,
			MaxHealth:      100,
			ContactRadius:  1,
			DeathAnimation: time.Second,
		},
		Car: CarSettings{
			Speed:        10,
			Acceleration: 5,
			Deceleration: 8,
			MaxHP:        100,
		},
		Game: GameSettings{
			MapLength:            60,
			DistanceBetweenTiles: 0.5,
			TileLength:           1,
		},
		Weapon: WeaponSettings{
			FireRate:         500 * time.Millisecond,
			BulletSpeed:      20,
			BulletDamage:     25,
			BulletLifetime:   5 * time.Second,
			HitRadius:        0.75,
			PoolSize:         30,
			MaxRotationAngle: 90,
			RotationSpeed:    150,
			InputSensitivity: 10,
		},
		Camera: CameraSettings{
			FollowSpeed: 2,
			Offset:      world.Vec3{Y: 5, Z: -10},
			Transition:  500 * time.Millisecond,
		},
	}
}

// Asset file names inside the data directory.
const (
	EnemySpawnFile = "enemy_spawn.yaml"
	EnemyFile      = "enemy.yaml"
	CarFile        = "car.yaml"
	GameFile       = "game.yaml"
	WeaponFile     = "weapon.yaml"
	CameraFile     = "camera.yaml"
)

// LoadSettings reads every asset from dir over the defaults. A missing asset
// keeps its defaults and logs a warning; a malformed or out-of-range asset is
// an error.
func LoadSettings(dir string, log *zap.Logger) (*Settings, error) {
	s := DefaultSettings()
	assets := []struct {
		file string
		into any
	}{
		{EnemySpawnFile, &s.EnemySpawn},
		{EnemyFile, &s.Enemy},
		{CarFile, &s.Car},
		{GameFile, &s.Game},
		{WeaponFile, &s.Weapon},
		{CameraFile, &s.Camera},
	}
	for _, a := range assets {
		path := filepath.Join(dir, a.file)
		found, err := loadYAML(path, a.into)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Warn("settings asset missing, using defaults", zap.String("file", path))
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadYAML(path string, into any) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, into); err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// Validate checks the range constraints of every asset.
func (s *Settings) Validate() error {
	checks := []struct {
		ok    bool
		field string
	}{
		{s.EnemySpawn.TotalEnemyCount >= 0, "enemy_spawn.total_enemy_count"},
		{s.EnemySpawn.SpawnPointCount >= 0, "enemy_spawn.spawn_point_count"},
		{s.EnemySpawn.EnemyPoolInitialSize >= 1, "enemy_spawn.enemy_pool_initial_size"},
		{s.EnemySpawn.SideXOffsetRange >= 0, "enemy_spawn.side_x_offset_range"},
		{s.EnemySpawn.SideZOffsetRange >= 0, "enemy_spawn.side_z_offset_range"},
		{s.EnemySpawn.MinSpawnDistance >= 0, "enemy_spawn.min_spawn_distance"},
		{s.Enemy.AggroRadius >= 0, "enemy.aggro_radius"},
		{s.Enemy.MoveSpeed >= 0, "enemy.move_speed"},
		{s.Enemy.MaxHealth > 0, "enemy.max_health"},
		{s.Enemy.Damage >= 0, "enemy.damage"},
		{s.Enemy.ContactRadius > 0, "enemy.contact_radius"},
		{s.Enemy.DeathAnimation >= 0, "enemy.death_animation"},
		{s.Car.Speed > 0, "car.speed"},
		{s.Car.Acceleration > 0, "car.acceleration"},
		{s.Car.Deceleration > 0, "car.deceleration"},
		{s.Car.MaxHP > 0, "car.max_hp"},
		{s.Game.MapLength >= 0, "game.map_length"},
		{s.Game.DistanceBetweenTiles > 0, "game.distance_between_tiles"},
		{s.Game.TileLength > 0, "game.tile_length"},
		{s.Weapon.FireRate > 0, "weapon.fire_rate"},
		{s.Weapon.BulletSpeed > 0, "weapon.bullet_speed"},
		{s.Weapon.BulletLifetime > 0, "weapon.bullet_lifetime"},
		{s.Weapon.HitRadius > 0, "weapon.hit_radius"},
		{s.Weapon.PoolSize >= 0, "weapon.pool_size"},
		{s.Weapon.MaxRotationAngle >= 30 && s.Weapon.MaxRotationAngle <= 180, "weapon.max_rotation_angle"},
		{s.Weapon.RotationSpeed >= 150 && s.Weapon.RotationSpeed <= 250, "weapon.rotation_speed"},
		{s.Weapon.InputSensitivity >= 1 && s.Weapon.InputSensitivity <= 30, "weapon.input_sensitivity"},
		{s.Camera.Transition >= 0, "camera.transition"},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s out of range", ErrInvalidSettings, c.field)
		}
	}
	return nil
}
