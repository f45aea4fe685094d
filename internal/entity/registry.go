package entity

// Ref is an opaque weak reference token. The zero Ref never resolves.
type Ref uint64

type pool interface {
	Kind() Kind
	lookup(id ID) (any, bool)
	setReleaseHook(fn func(ID))
}

// Registry resolves IDs across pools and hands out weak reference tokens.
// Tokens of a released entity are dropped when its slot is released, so a
// dangling token resolves to "not found" instead of a reused slot.
type Registry struct {
	pools map[Kind]pool
	refs  map[Ref]ID
	byID  map[ID][]Ref
	next  Ref
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pools: make(map[Kind]pool),
		refs:  make(map[Ref]ID),
		byID:  make(map[ID][]Ref),
	}
}

// Attach registers a pool for its kind and hooks its releases.
func Attach[T any](r *Registry, p *Pool[T]) {
	if _, dup := r.pools[p.Kind()]; dup {
		Fatalf("registry: pool for %s already attached", p.Kind())
	}
	r.pools[p.Kind()] = p
	p.setReleaseHook(r.invalidate)
}

// Resolve returns the object behind id, as a pointer to the pool element.
func (r *Registry) Resolve(id ID) (any, bool) {
	p, ok := r.pools[id.Kind]
	if !ok {
		return nil, false
	}
	return p.lookup(id)
}

// AddRef issues a new token for id. Tokens for dead IDs are issued but
// never resolve.
func (r *Registry) AddRef(id ID) Ref {
	r.next++
	ref := r.next
	if _, alive := r.Resolve(id); !alive {
		return ref
	}
	r.refs[ref] = id
	r.byID[id] = append(r.byID[id], ref)
	return ref
}

// Deref returns the ID behind ref if its entity is still alive.
func (r *Registry) Deref(ref Ref) (ID, bool) {
	id, ok := r.refs[ref]
	if !ok {
		return ID{}, false
	}
	return id, true
}

// FreeRef drops a token early.
func (r *Registry) FreeRef(ref Ref) {
	id, ok := r.refs[ref]
	if !ok {
		return
	}
	delete(r.refs, ref)
	list := r.byID[id]
	for i, v := range list {
		if v == ref {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.byID, id)
	} else {
		r.byID[id] = list
	}
}

// Refs returns the number of live tokens.
func (r *Registry) Refs() int {
	return len(r.refs)
}

func (r *Registry) invalidate(id ID) {
	for _, ref := range r.byID[id] {
		delete(r.refs, ref)
	}
	delete(r.byID, id)
}

// Get resolves ref to a typed pointer.
func Get[T any](r *Registry, ref Ref) (*T, bool) {
	id, ok := r.Deref(ref)
	if !ok {
		return nil, false
	}
	v, ok := r.Resolve(id)
	if !ok {
		return nil, false
	}
	t, ok := v.(*T)
	return t, ok
}
