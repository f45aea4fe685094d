// Package entity provides typed fixed-capacity pools with
// generation-checked handles, and a registry of weak reference tokens.
//
// Pools own their objects. Everything else holds an ID or a Ref and must
// resolve it every time it needs the object; a resolved pointer is only
// valid until the slot is released.
package entity

import "fmt"

// Kind tags which pool an ID belongs to.
type Kind uint8

const (
	KindNone Kind = iota
	KindEnemy
	KindProjectile
	KindParticle
	KindLaser
	KindItem
	KindBoss
	KindPlayer
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindEnemy:
		return "enemy"
	case KindProjectile:
		return "projectile"
	case KindParticle:
		return "particle"
	case KindLaser:
		return "laser"
	case KindItem:
		return "item"
	case KindBoss:
		return "boss"
	case KindPlayer:
		return "player"
	default:
		return "none"
	}
}

// ID identifies one occupancy of a pool slot. The zero ID is never valid.
type ID struct {
	Kind  Kind
	Index uint32
	Gen   uint32
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

// String formats the ID as kind#index.gen.
func (id ID) String() string {
	return fmt.Sprintf("%s#%d.%d", id.Kind, id.Index, id.Gen)
}

// FatalError reports a programming error that must abort the session,
// such as pool exhaustion or spawning from draw code. It is raised with
// panic and recovered only at the session boundary.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string {
	return "fatal: " + e.Msg
}

// Fatalf panics with a *FatalError.
func Fatalf(format string, args ...any) {
	panic(&FatalError{Msg: fmt.Sprintf(format, args...)})
}
