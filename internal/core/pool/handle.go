package pool

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments every time the
// slot is released, so a handle taken before a release goes stale.
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
