package pool

import (
	"errors"

	"go.uber.org/zap"
)

// ErrNotOwned is returned when releasing an instance the pool never created.
var ErrNotOwned = errors.New("pool: instance not owned by this pool")

// Lifecycle creates and prepares pooled instances. OnGet may fail (for
// example when the instance cannot be initialized); the pool then puts the
// instance back to idle instead of handing out a half-initialized one.
type Lifecycle[T any] interface {
	OnCreate() (T, error)
	OnGet(item T) error
	OnRelease(item T)
	OnDestroy(item T)
}

type slot[T any] struct {
	item       T
	active     bool
	generation uint32
}

// Pool reuses instances of T instead of constructing new ones. It owns every
// instance it ever created until DestroyAll. It grows without bound and never
// shrinks. Single goroutine only.
type Pool[T comparable] struct {
	name  string
	lc    Lifecycle[T]
	slots []*slot[T]
	index map[T]uint32
	log   *zap.Logger
}

// New creates a pool and warms it up with initialSize idle instances.
func New[T comparable](name string, lc Lifecycle[T], initialSize int, log *zap.Logger) *Pool[T] {
	if log == nil {
		log = zap.NewNop()
	}
	if initialSize < 0 {
		initialSize = 0
	}
	p := &Pool[T]{
		name:  name,
		lc:    lc,
		slots: make([]*slot[T], 0, initialSize),
		index: make(map[T]uint32, initialSize),
		log:   log,
	}
	p.warmUp(initialSize)
	return p
}

func (p *Pool[T]) warmUp(count int) {
	for i := 0; i < count; i++ {
		s, ok := p.create()
		if !ok {
			return
		}
		p.lc.OnRelease(s.item)
	}
}

func (p *Pool[T]) create() (*slot[T], bool) {
	item, err := p.lc.OnCreate()
	var zero T
	if err == nil && item == zero {
		err = errors.New("factory returned no instance")
	}
	if err != nil {
		p.log.Warn("pool: create instance failed",
			zap.String("pool", p.name),
			zap.Int("owned", len(p.slots)),
			zap.Error(err),
		)
		return nil, false
	}
	s := &slot[T]{item: item}
	p.index[item] = uint32(len(p.slots))
	p.slots = append(p.slots, s)
	return s, true
}

// Get returns an idle instance, creating one when none is idle. The instance
// is active when Get returns. ok is false when creation or OnGet failed.
func (p *Pool[T]) Get() (item T, h Handle, ok bool) {
	var chosen *slot[T]
	var idx int
	for i, s := range p.slots {
		if !s.active {
			chosen, idx = s, i
			break
		}
	}
	if chosen == nil {
		s, created := p.create()
		if !created {
			return item, 0, false
		}
		chosen, idx = s, len(p.slots)-1
	}

	chosen.active = true
	if err := p.lc.OnGet(chosen.item); err != nil {
		p.log.Error("pool: prepare instance failed, deactivating",
			zap.String("pool", p.name),
			zap.Int("slot", idx),
			zap.Error(err),
		)
		p.lc.OnRelease(chosen.item)
		chosen.active = false
		chosen.generation++
		return item, 0, false
	}
	return chosen.item, NewHandle(uint32(idx), chosen.generation), true
}

// Release returns item to the idle set. Releasing an idle instance is a no-op.
func (p *Pool[T]) Release(item T) error {
	idx, ok := p.index[item]
	if !ok {
		return ErrNotOwned
	}
	p.release(p.slots[idx])
	return nil
}

func (p *Pool[T]) release(s *slot[T]) {
	if !s.active {
		return
	}
	p.lc.OnRelease(s.item)
	s.active = false
	s.generation++
}

// ReleaseAll releases every active instance and returns how many there were.
func (p *Pool[T]) ReleaseAll() int {
	n := 0
	for _, s := range p.slots {
		if s.active {
			p.release(s)
			n++
		}
	}
	return n
}

// DestroyAll tears down every owned instance and empties the pool.
func (p *Pool[T]) DestroyAll() {
	for _, s := range p.slots {
		p.lc.OnDestroy(s.item)
	}
	p.slots = p.slots[:0]
	p.index = make(map[T]uint32)
}

// Valid reports whether h still refers to the activation it was issued for.
func (p *Pool[T]) Valid(h Handle) bool {
	idx := int(h.Index())
	if idx >= len(p.slots) {
		return false
	}
	s := p.slots[idx]
	return s.active && s.generation == h.Generation()
}

// HandleOf returns the current handle of an active instance.
func (p *Pool[T]) HandleOf(item T) (Handle, bool) {
	idx, ok := p.index[item]
	if !ok || !p.slots[idx].active {
		return 0, false
	}
	return NewHandle(idx, p.slots[idx].generation), true
}

// IsActive reports whether item is owned and currently handed out.
func (p *Pool[T]) IsActive(item T) bool {
	idx, ok := p.index[item]
	return ok && p.slots[idx].active
}

// EachActive calls fn for every active instance in creation order. fn may
// release the instance it is given.
func (p *Pool[T]) EachActive(fn func(T)) {
	for _, s := range p.slots {
		if s.active {
			fn(s.item)
		}
	}
}

// AvailableCount counts idle instances by scanning every slot.
func (p *Pool[T]) AvailableCount() int {
	n := 0
	for _, s := range p.slots {
		if !s.active {
			n++
		}
	}
	return n
}

func (p *Pool[T]) IsAvailable() bool { return p.AvailableCount() > 0 }
func (p *Pool[T]) ActiveCount() int  { return len(p.slots) - p.AvailableCount() }
func (p *Pool[T]) Len() int          { return len(p.slots) }
