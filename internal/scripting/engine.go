package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for damage formulas.
// Single-goroutine access only (game loop). A nil *Engine is valid and
// always returns the base damage of its context.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from scriptsDir/combat.
// A missing directory loads nothing; every formula then falls back.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	combatPath := filepath.Join(scriptsDir, "combat")
	if err := e.loadDir(combatPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load combat scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("lua script directory missing", zap.String("dir", dir))
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// BulletContext describes a bullet hitting an enemy.
type BulletContext struct {
	BaseDamage     int
	EnemyHealth    int
	EnemyMaxHealth int
	Distance       float64 // travelled by the bullet before the hit
}

// EnemyContext describes an enemy reaching the car.
type EnemyContext struct {
	BaseDamage int
	CarHP      int
	CarMaxHP   int
	CarSpeed   float64
}

// CalcBulletDamage calls the Lua calc_bullet_damage function.
func (e *Engine) CalcBulletDamage(ctx BulletContext) int {
	if e == nil {
		return ctx.BaseDamage
	}
	t := e.vm.NewTable()
	t.RawSetString("base_damage", lua.LNumber(ctx.BaseDamage))
	t.RawSetString("distance", lua.LNumber(ctx.Distance))

	tgt := e.vm.NewTable()
	tgt.RawSetString("hp", lua.LNumber(ctx.EnemyHealth))
	tgt.RawSetString("max_hp", lua.LNumber(ctx.EnemyMaxHealth))
	t.RawSetString("target", tgt)

	return e.callDamage("calc_bullet_damage", t, ctx.BaseDamage)
}

// CalcEnemyDamage calls the Lua calc_enemy_damage function.
func (e *Engine) CalcEnemyDamage(ctx EnemyContext) int {
	if e == nil {
		return ctx.BaseDamage
	}
	t := e.vm.NewTable()
	t.RawSetString("base_damage", lua.LNumber(ctx.BaseDamage))

	car := e.vm.NewTable()
	car.RawSetString("hp", lua.LNumber(ctx.CarHP))
	car.RawSetString("max_hp", lua.LNumber(ctx.CarMaxHP))
	car.RawSetString("speed", lua.LNumber(ctx.CarSpeed))
	t.RawSetString("car", car)

	return e.callDamage("calc_enemy_damage", t, ctx.BaseDamage)
}

// callDamage runs a formula that returns a single number. Any failure logs
// and yields fallback. Negative results clamp to 0.
func (e *Engine) callDamage(name string, arg *lua.LTable, fallback int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Debug("lua function not found, using base damage", zap.String("fn", name))
		return fallback
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("fn", name), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number",
			zap.String("fn", name),
			zap.String("type", result.Type().String()),
		)
		return fallback
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// Has reports whether a global Lua function with the given name is loaded.
func (e *Engine) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Close releases the Lua VM. Safe on a nil engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.vm.Close()
}
