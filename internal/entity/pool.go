package entity

const noSlot = ^uint32(0)

type slot[T any] struct {
	val   T
	gen   uint32
	alive bool
	// Live list links, in acquisition order.
	prev, next uint32
	// Free list link.
	nextFree uint32
}

// Pool is a fixed-capacity arena of T. Slots are recycled through a free
// list; each reuse bumps the slot generation so stale IDs stop resolving.
// Storage is allocated once, so pointers returned by Get stay valid until
// the slot is released.
type Pool[T any] struct {
	kind      Kind
	slots     []slot[T]
	freeHead  uint32
	head      uint32
	tail      uint32
	live      int
	onRelease func(ID)
}

// NewPool allocates a pool with room for capacity objects.
func NewPool[T any](kind Kind, capacity int) *Pool[T] {
	if capacity <= 0 {
		Fatalf("pool %s: capacity must be positive, got %d", kind, capacity)
	}
	p := &Pool[T]{
		kind:     kind,
		slots:    make([]slot[T], capacity),
		freeHead: 0,
		head:     noSlot,
		tail:     noSlot,
	}
	for i := range p.slots {
		p.slots[i].nextFree = uint32(i + 1)
		p.slots[i].prev = noSlot
		p.slots[i].next = noSlot
	}
	p.slots[capacity-1].nextFree = noSlot
	return p
}

// Kind returns the kind of objects this pool holds.
func (p *Pool[T]) Kind() Kind {
	return p.kind
}

// Len returns the number of live objects.
func (p *Pool[T]) Len() int {
	return p.live
}

// Cap returns the pool capacity.
func (p *Pool[T]) Cap() int {
	return len(p.slots)
}

// Acquire takes a zeroed slot and appends it to the live list.
// Exhaustion is a fatal configuration error.
func (p *Pool[T]) Acquire() (ID, *T) {
	if p.freeHead == noSlot {
		Fatalf("pool %s exhausted (capacity %d)", p.kind, len(p.slots))
	}
	idx := p.freeHead
	s := &p.slots[idx]
	p.freeHead = s.nextFree

	var zero T
	s.val = zero
	s.alive = true
	s.gen++
	s.nextFree = noSlot
	s.prev = p.tail
	s.next = noSlot
	if p.tail != noSlot {
		p.slots[p.tail].next = idx
	} else {
		p.head = idx
	}
	p.tail = idx
	p.live++

	return ID{Kind: p.kind, Index: idx, Gen: s.gen}, &s.val
}

// Get resolves id. It fails for released or reused slots.
func (p *Pool[T]) Get(id ID) (*T, bool) {
	if id.Kind != p.kind || int(id.Index) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[id.Index]
	if !s.alive || s.gen != id.Gen {
		return nil, false
	}
	return &s.val, true
}

// Alive reports whether id still resolves.
func (p *Pool[T]) Alive(id ID) bool {
	_, ok := p.Get(id)
	return ok
}

// Release returns the slot to the free list and invalidates weak
// references to it. Releasing a stale ID is a no-op returning false.
func (p *Pool[T]) Release(id ID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index
	s := &p.slots[idx]

	if s.prev != noSlot {
		p.slots[s.prev].next = s.next
	} else {
		p.head = s.next
	}
	if s.next != noSlot {
		p.slots[s.next].prev = s.prev
	} else {
		p.tail = s.prev
	}

	var zero T
	s.val = zero
	s.alive = false
	s.prev, s.next = noSlot, noSlot
	s.nextFree = p.freeHead
	p.freeHead = idx
	p.live--

	if p.onRelease != nil {
		p.onRelease(id)
	}
	return true
}

// IDs returns the live IDs in acquisition order. Objects acquired after
// the call are not included, which gives update passes a stable snapshot.
func (p *Pool[T]) IDs() []ID {
	ids := make([]ID, 0, p.live)
	for i := p.head; i != noSlot; i = p.slots[i].next {
		ids = append(ids, ID{Kind: p.kind, Index: i, Gen: p.slots[i].gen})
	}
	return ids
}

// Each calls fn for every live object in acquisition order until fn
// returns false. fn must not acquire or release.
func (p *Pool[T]) Each(fn func(ID, *T) bool) {
	for i := p.head; i != noSlot; i = p.slots[i].next {
		s := &p.slots[i]
		if !fn(ID{Kind: p.kind, Index: i, Gen: s.gen}, &s.val) {
			return
		}
	}
}

func (p *Pool[T]) lookup(id ID) (any, bool) {
	v, ok := p.Get(id)
	if !ok {
		return nil, false
	}
	return v, true
}

func (p *Pool[T]) setReleaseHook(fn func(ID)) {
	p.onRelease = fn
}
