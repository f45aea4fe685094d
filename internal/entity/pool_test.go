package entity

import (
	"errors"
	"testing"
)

type testObj struct {
	HP int
}

func TestPoolAcquireRelease(t *testing.T) {
	p := NewPool[testObj](KindEnemy, 4)

	id, obj := p.Acquire()
	obj.HP = 100

	got, ok := p.Get(id)
	if !ok || got.HP != 100 {
		t.Fatalf("Get(%v) = %+v, %v; expected HP 100", id, got, ok)
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", p.Len())
	}

	if !p.Release(id) {
		t.Fatal("Release of a live ID should succeed")
	}
	if p.Release(id) {
		t.Error("double Release should be a no-op")
	}
	if _, ok := p.Get(id); ok {
		t.Error("released ID should not resolve")
	}
}

func TestPoolReuseBumpsGeneration(t *testing.T) {
	p := NewPool[testObj](KindProjectile, 1)

	old, obj := p.Acquire()
	obj.HP = 7
	p.Release(old)

	fresh, obj2 := p.Acquire()
	if fresh.Index != old.Index {
		t.Fatalf("single-slot pool should reuse index %d, got %d", old.Index, fresh.Index)
	}
	if fresh.Gen == old.Gen {
		t.Error("reuse must bump the generation")
	}
	if obj2.HP != 0 {
		t.Errorf("acquired slot should be zeroed, got HP %d", obj2.HP)
	}
	if _, ok := p.Get(old); ok {
		t.Error("stale ID resolved to a reused slot")
	}
}

func TestPoolExhaustionIsFatal(t *testing.T) {
	p := NewPool[testObj](KindLaser, 2)
	p.Acquire()
	p.Acquire()

	defer func() {
		r := recover()
		err, ok := r.(error)
		var fatal *FatalError
		if !ok || !errors.As(err, &fatal) {
			t.Fatalf("expected *FatalError panic, got %v", r)
		}
	}()
	p.Acquire()
}

func TestPoolIDsOrder(t *testing.T) {
	p := NewPool[testObj](KindEnemy, 8)
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	c, _ := p.Acquire()
	p.Release(b)
	d, _ := p.Acquire()

	ids := p.IDs()
	want := []ID{a, c, d}
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, expected %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %v, expected %v", i, ids[i], want[i])
		}
	}

	count := 0
	p.Each(func(ID, *testObj) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Each should stop when fn returns false, visited %d", count)
	}
}

func TestRegistryRefsInvalidatedOnRelease(t *testing.T) {
	reg := NewRegistry()
	enemies := NewPool[testObj](KindEnemy, 2)
	Attach(reg, enemies)

	id, obj := enemies.Acquire()
	obj.HP = 42
	ref := reg.AddRef(id)

	got, ok := Get[testObj](reg, ref)
	if !ok || got.HP != 42 {
		t.Fatalf("Get(ref) = %+v, %v; expected HP 42", got, ok)
	}

	enemies.Release(id)
	if _, ok := Get[testObj](reg, ref); ok {
		t.Error("ref to released entity should not resolve")
	}

	// The slot is reused by a different entity; the old token must stay dead.
	id2, obj2 := enemies.Acquire()
	obj2.HP = 9
	if _, ok := reg.Deref(ref); ok {
		t.Error("old token aliased a reused slot")
	}
	if reg.Refs() != 0 {
		t.Errorf("Refs() = %d, expected 0", reg.Refs())
	}

	ref2 := reg.AddRef(id2)
	reg.FreeRef(ref2)
	if _, ok := reg.Deref(ref2); ok {
		t.Error("freed token should not resolve")
	}
}

func TestRegistryWrongType(t *testing.T) {
	reg := NewRegistry()
	pool := NewPool[testObj](KindItem, 1)
	Attach(reg, pool)

	id, _ := pool.Acquire()
	ref := reg.AddRef(id)
	if _, ok := Get[int](reg, ref); ok {
		t.Error("Get with the wrong type should fail")
	}
	if v, ok := reg.Resolve(ID{Kind: KindBoss, Index: 0, Gen: 1}); ok || v != nil {
		t.Error("Resolve for an unattached kind should fail")
	}
}
