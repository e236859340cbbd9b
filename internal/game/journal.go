package game

import "github.com/zombierun/sim/internal/core/event"

// JournalEntry is one notable event of a round. Tick is the zero-based tick
// it happened on.
type JournalEntry struct {
	Tick  uint64
	Kind  event.Type
	Value int
}

// Journal records the notable events of the current round for the run
// history. It is cleared when a new round is set up.
type Journal struct {
	entries []JournalEntry
	ticks   func() uint64
}

func NewJournal(bus *event.Bus, ticks func() uint64) *Journal {
	j := &Journal{ticks: ticks}

	event.On(bus, func(e event.PlayerDamagedEvent) { j.add(event.PlayerDamaged, e.Amount) })
	event.On(bus, func(e event.EnemySpawnedEvent) { j.add(event.EnemySpawned, e.SpawnIndex) })
	event.On(bus, func(e event.EnemyDiedEvent) {
		killed := 0
		if e.Killed {
			killed = 1
		}
		j.add(event.EnemyDied, killed)
	})
	event.On(bus, func(e event.GameStateChangedEvent) { j.add(event.GameStateChanged, e.Next) })
	event.On(bus, func(event.GameOverEvent) { j.add(event.GameOver, 0) })
	event.On(bus, func(event.CarReachedEndEvent) { j.add(event.CarReachedEnd, 0) })
	event.On(bus, func(event.RestartGameEvent) { j.entries = j.entries[:0] })
	event.On(bus, func(event.ContinueGameEvent) { j.entries = j.entries[:0] })
	return j
}

func (j *Journal) add(kind event.Type, value int) {
	j.entries = append(j.entries, JournalEntry{Tick: j.ticks(), Kind: kind, Value: value})
}

// Entries returns a copy of the recorded entries in order.
func (j *Journal) Entries() []JournalEntry {
	out := make([]JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

func (j *Journal) Len() int { return len(j.entries) }
