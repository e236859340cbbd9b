package event

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFireInvokesHandlersInSubscriptionOrder(t *testing.T) {
	b := NewBus(zap.NewNop())
	var got []int
	b.Subscribe(PlayerDamaged, func(Event) { got = append(got, 1) })
	b.Subscribe(PlayerDamaged, func(Event) { got = append(got, 2) })
	b.Subscribe(HPChanged, func(Event) { got = append(got, 99) })
	b.Subscribe(PlayerDamaged, func(Event) { got = append(got, 3) })

	b.Fire(PlayerDamagedEvent{Amount: 10})

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestOnDeliversTypedPayload(t *testing.T) {
	b := NewBus(zap.NewNop())
	var amount int
	On(b, func(e PlayerDamagedEvent) { amount += e.Amount })

	b.Fire(PlayerDamagedEvent{Amount: 150})
	b.Fire(HPChangedEvent{Current: 1, Max: 2})

	if amount != 150 {
		t.Errorf("amount = %d, want 150", amount)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus(zap.NewNop())
	calls := map[string]int{}
	a := b.Subscribe(GameOver, func(Event) { calls["a"]++ })
	b.Subscribe(GameOver, func(Event) { calls["b"]++ })

	b.Unsubscribe(a)
	b.Fire(GameOverEvent{})

	if calls["a"] != 0 || calls["b"] != 1 {
		t.Errorf("calls = %v, want a=0 b=1", calls)
	}
}

func TestUnsubscribeLastHandlerRemovesType(t *testing.T) {
	b := NewBus(zap.NewNop())
	id := b.Subscribe(StartGame, func(Event) {})
	if b.TypeCount() != 1 {
		t.Fatalf("TypeCount() = %d, want 1", b.TypeCount())
	}
	b.Unsubscribe(id)
	if b.TypeCount() != 0 {
		t.Errorf("TypeCount() after last unsubscribe = %d, want 0", b.TypeCount())
	}
}

func TestUnsubscribeUnknownIsNoop(t *testing.T) {
	b := NewBus(zap.NewNop())
	b.Subscribe(StartGame, func(Event) {})
	id := b.Subscribe(StartGame, func(Event) {})
	b.Unsubscribe(id)

	b.Unsubscribe(id)
	b.Unsubscribe(SubscriptionID(12345))

	if n := b.HandlerCount(StartGame); n != 1 {
		t.Errorf("HandlerCount = %d, want 1", n)
	}
	if b.TypeCount() != 1 {
		t.Errorf("TypeCount = %d, want 1", b.TypeCount())
	}
}

func TestDuplicateSubscriptionFiresTwice(t *testing.T) {
	b := NewBus(zap.NewNop())
	calls := 0
	h := func(Event) { calls++ }
	b.Subscribe(ReadyGame, h)
	b.Subscribe(ReadyGame, h)

	b.Fire(ReadyGameEvent{})
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPanickingHandlerDoesNotStopSiblings(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	b := NewBus(zap.New(core))

	var ran []string
	b.Subscribe(EnemyDied, func(Event) { ran = append(ran, "first") })
	b.Subscribe(EnemyDied, func(Event) { panic("boom") })
	b.Subscribe(EnemyDied, func(Event) { ran = append(ran, "third") })

	b.Fire(EnemyDiedEvent{EnemyID: 7})

	if len(ran) != 2 || ran[0] != "first" || ran[1] != "third" {
		t.Errorf("ran = %v, want [first third]", ran)
	}
	entries := logs.FilterMessage("event handler failed").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d handler failures, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["event"]; got != "EnemyDied" {
		t.Errorf("logged event = %v, want EnemyDied", got)
	}
}

func TestWrongPayloadTypeIsContained(t *testing.T) {
	b := NewBus(zap.NewNop())
	On(b, func(PlayerDamagedEvent) {})
	after := 0
	b.Subscribe(PlayerDamaged, func(Event) { after++ })

	// Pointer payload fails the typed assertion in On; the bus must absorb it.
	b.Fire(&PlayerDamagedEvent{Amount: 1})
	if after != 1 {
		t.Errorf("sibling handler calls = %d, want 1", after)
	}
}

func TestFireIsReentrant(t *testing.T) {
	b := NewBus(zap.NewNop())
	hp := 0
	var late int
	On(b, func(e PlayerDamagedEvent) {
		b.Fire(HPChangedEvent{Current: 100 - e.Amount, Max: 100})
		// Subscribing mid-dispatch must not affect the current Fire.
		b.Subscribe(PlayerDamaged, func(Event) { late++ })
	})
	On(b, func(e HPChangedEvent) { hp = e.Current })

	b.Fire(PlayerDamagedEvent{Amount: 30})
	if hp != 70 {
		t.Errorf("hp = %d, want 70", hp)
	}
	if late != 0 {
		t.Errorf("late subscriber ran %d times during the same Fire", late)
	}
}

func TestFireWithoutSubscribers(t *testing.T) {
	b := NewBus(zap.NewNop())
	b.Fire(GameOverEvent{})
	b.Fire(nil)
}

func TestPostFlushDefersToNextFlush(t *testing.T) {
	b := NewBus(zap.NewNop())
	var got []int
	On(b, func(e PlayerDamagedEvent) {
		got = append(got, e.Amount)
		if e.Amount == 1 {
			b.Post(PlayerDamagedEvent{Amount: 3})
		}
	})

	b.Post(PlayerDamagedEvent{Amount: 1})
	b.Post(PlayerDamagedEvent{Amount: 2})
	if len(got) != 0 {
		t.Fatal("Post must not deliver before Flush")
	}
	if n := b.Flush(); n != 2 {
		t.Errorf("Flush() = %d, want 2", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("after first flush got %v, want [1 2]", got)
	}
	if b.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", b.Pending())
	}
	b.Flush()
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("after second flush got %v, want [1 2 3]", got)
	}
}

func TestClear(t *testing.T) {
	b := NewBus(zap.NewNop())
	calls := 0
	b.Subscribe(GameOver, func(Event) { calls++ })
	b.Post(GameOverEvent{})

	b.Clear()
	b.Fire(GameOverEvent{})
	b.Flush()

	if calls != 0 {
		t.Errorf("calls = %d after Clear, want 0", calls)
	}
	if b.TypeCount() != 0 {
		t.Errorf("TypeCount() = %d, want 0", b.TypeCount())
	}
}

func TestLogActiveSubscriptions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	b := NewBus(zap.New(core))
	b.Subscribe(GameOver, func(Event) {})
	b.Subscribe(GameOver, func(Event) {})
	b.Subscribe(StartGame, func(Event) {})

	b.LogActiveSubscriptions()

	lines := logs.FilterMessage("  subscribers").All()
	if len(lines) != 2 {
		t.Fatalf("logged %d type lines, want 2", len(lines))
	}
	// Sorted by type: StartGame before GameOver.
	if lines[0].ContextMap()["event"] != "StartGame" || lines[1].ContextMap()["count"] != int64(2) {
		t.Errorf("unexpected lines: %v / %v", lines[0].ContextMap(), lines[1].ContextMap())
	}
}

func TestHPChangedPercentage(t *testing.T) {
	if p := (HPChangedEvent{Current: 25, Max: 100}).Percentage(); p != 0.25 {
		t.Errorf("Percentage = %v", p)
	}
	if p := (HPChangedEvent{Current: 5}).Percentage(); p != 0 {
		t.Errorf("Percentage with zero max = %v", p)
	}
}
