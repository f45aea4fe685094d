// Package registry provides a global registry for stage factories.
// Stages register themselves in init() functions, allowing the CLI and
// the platform to discover and start stages without hardcoded imports.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-danmaku/internal/stage"
)

// ErrUnknownStage is returned by Create for an unregistered ID.
var ErrUnknownStage = errors.New("registry: unknown stage")

// StageInfo contains metadata about a registered stage.
type StageInfo struct {
	ID       string
	Number   int
	Title    string
	Subtitle string
	Type     stage.Type
}

// Factory builds a fresh stage description. Stage content keeps its
// per-run state in closures, so every session needs its own Info.
type Factory func() stage.Info

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]StageInfo)
	mu        sync.RWMutex
)

// Register adds a stage factory to the registry.
// Typically called from a stage package's init() function.
// Panics if a stage with the same ID is already registered or if the
// factory builds a stage with a different ID.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: stage %q already registered", id))
	}

	info := f()
	if info.ID != id {
		panic(fmt.Sprintf("registry: factory for %q builds stage %q", id, info.ID))
	}

	factories[id] = f
	infos[id] = StageInfo{
		ID:       id,
		Number:   info.Number,
		Title:    info.Title,
		Subtitle: info.Subtitle,
		Type:     info.Type,
	}
}

// List returns all registered stages ordered by number, then ID.
func List() []StageInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]StageInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Number != result[j].Number {
			return result[i].Number < result[j].Number
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Create builds a new stage by its ID.
func Create(id string) (stage.Info, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return stage.Info{}, fmt.Errorf("%w %q", ErrUnknownStage, id)
	}

	return f(), nil
}

// Exists checks if a stage with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
