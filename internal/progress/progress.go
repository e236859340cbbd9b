package progress

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/zombierun/sim/internal/game"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	progressObject   = "progress"
	progressProperty = "global"
)

// Progress is the player's lifetime record across runs.
type Progress struct {
	RunsPlayed   int     `yaml:"runs_played"`
	Victories    int     `yaml:"victories"`
	Defeats      int     `yaml:"defeats"`
	BestDistance float64 `yaml:"best_distance"`
	TotalKills   int     `yaml:"total_kills"`
	TotalShots   int     `yaml:"total_shots"`
}

// Manager loads and saves Progress through gdata. A nil gdata manager keeps
// progress in memory only.
type Manager struct {
	data     *gdata.Manager
	progress Progress
	log      *zap.Logger
}

// Open creates the gdata storage for appName and loads the saved progress.
// An empty appName returns an in-memory manager.
func Open(appName string, log *zap.Logger) (*Manager, error) {
	if appName == "" {
		log.Info("progress save disabled")
		return NewManager(nil, log), nil
	}
	gm, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open save data %q: %w", appName, err)
	}
	return NewManager(gm, log), nil
}

// NewManager loads the saved progress. A load failure keeps a fresh record
// and is logged.
func NewManager(data *gdata.Manager, log *zap.Logger) *Manager {
	m := &Manager{data: data, log: log}
	if err := m.Load(); err != nil {
		log.Warn("progress load failed, starting fresh", zap.Error(err))
	}
	return m
}

// Load replaces the in-memory progress with the saved one.
func (m *Manager) Load() error {
	m.progress = Progress{}
	if m.data == nil || !m.data.ObjectPropExists(progressObject, progressProperty) {
		return nil
	}
	raw, err := m.data.LoadObjectProp(progressObject, progressProperty)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	var p Progress
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("unmarshal progress: %w", err)
	}
	m.progress = p
	return nil
}

// Save persists the progress. Without storage it does nothing.
func (m *Manager) Save() error {
	if m.data == nil {
		return nil
	}
	raw, err := yaml.Marshal(m.progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := m.data.SaveObjectProp(progressObject, progressProperty, raw); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	m.log.Debug("progress saved", zap.Int("runs", m.progress.RunsPlayed))
	return nil
}

// Record folds a finished round into the progress. Aborted rounds are not
// counted. A round cut off by the tick limit counts as a defeat.
func (m *Manager) Record(r game.Result) {
	if r.Outcome == game.OutcomeAborted || r.Outcome == game.OutcomeNone {
		return
	}
	p := &m.progress
	p.RunsPlayed++
	switch r.Outcome {
	case game.OutcomeVictory:
		p.Victories++
	case game.OutcomeDefeat, game.OutcomeTimeout:
		p.Defeats++
	}
	p.BestDistance = max(p.BestDistance, r.Distance)
	p.TotalKills += r.Kills
	p.TotalShots += r.ShotsFired
}

func (m *Manager) Progress() Progress { return m.progress }
func (m *Manager) Persistent() bool   { return m.data != nil }
