package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-danmaku/internal/stage"
)

func TestRegisterAndCreate(t *testing.T) {
	Register("zz_test_b", func() stage.Info { return stage.Info{ID: "zz_test_b", Number: 90, Title: "B"} })
	Register("zz_test_a", func() stage.Info { return stage.Info{ID: "zz_test_a", Number: 91, Title: "A", Type: stage.TypeSpell} })

	if !Exists("zz_test_a") || Exists("zz_test_missing") {
		t.Error("Exists() mismatch")
	}

	var order []string
	for _, info := range List() {
		if info.Number >= 90 {
			order = append(order, info.ID)
		}
	}
	if len(order) != 2 || order[0] != "zz_test_b" {
		t.Errorf("List() order = %v, expected stage numbers to sort first", order)
	}

	info, err := Create("zz_test_a")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if info.Title != "A" || info.Type != stage.TypeSpell {
		t.Errorf("Create() = %+v", info)
	}

	if _, err := Create("zz_test_missing"); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("Create() of a missing stage error = %v", err)
	}
}

func TestRegisterPanics(t *testing.T) {
	tests := []struct {
		name string
		id   string
		f    Factory
	}{
		{"duplicate", "zz_test_dup", func() stage.Info { return stage.Info{ID: "zz_test_dup"} }},
		{"id mismatch", "zz_test_x", func() stage.Info { return stage.Info{ID: "zz_test_y"} }},
	}
	Register("zz_test_dup", func() stage.Info { return stage.Info{ID: "zz_test_dup"} })
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register() did not panic")
				}
			}()
			Register(tt.id, tt.f)
		})
	}
}
