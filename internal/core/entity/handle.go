package entity

// Handle encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on release to invalidate stale refs.
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

// Pool manages handle allocation with generational indices and a free list.
// Index 0 of generation 0 is never handed out, so the zero Handle always
// means "no owner".
type Pool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewPool() *Pool {
	return &Pool{
		generations: make([]uint32, 1, 64),
		freeList:    make([]uint32, 0, 16),
		nextIndex:   1,
	}
}

func (p *Pool) Acquire() Handle {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewHandle(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewHandle(idx, p.generations[idx])
}

func (p *Pool) Alive(h Handle) bool {
	idx := h.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == h.Generation()
}

// Release invalidates h. Releasing a stale handle is a no-op.
func (p *Pool) Release(h Handle) {
	if !p.Alive(h) {
		return
	}
	idx := h.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}
