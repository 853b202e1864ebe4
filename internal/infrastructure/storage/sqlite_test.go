package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func openTestStore(t *testing.T) *AftermathStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "aftermath.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAftermathRoundtrip(t *testing.T) {
	s := openTestStore(t)

	state := domain.NewCombatSession("combat-1", "camp")
	state.Entities["hero"] = &domain.Entity{
		ID: "hero", Name: "Hero", Tier: domain.TierFull, Alive: true,
		Wounds: map[string]int{"slash": 2, "burn": 1},
	}
	state.Entities["goblin"] = &domain.Entity{
		ID: "goblin", Tier: domain.TierMinion, Alive: false,
	}

	if err := s.SaveAftermath(state); err != nil {
		t.Fatalf("save aftermath: %v", err)
	}

	wounds, err := s.LoadWounds("hero")
	if err != nil {
		t.Fatalf("load wounds: %v", err)
	}
	if wounds["slash"] != 2 || wounds["burn"] != 1 {
		t.Errorf("wounds = %v, want slash=2 burn=1", wounds)
	}

	// Миньоны в архив не пишутся
	if wounds, err := s.LoadWounds("goblin"); err != nil || wounds != nil {
		t.Errorf("minion wounds = %v (err %v), want empty", wounds, err)
	}
}

func TestLoadWoundsTakesLatestCombat(t *testing.T) {
	s := openTestStore(t)

	first := domain.NewCombatSession("combat-1", "")
	first.Entities["hero"] = &domain.Entity{
		ID: "hero", Tier: domain.TierFull, Alive: true,
		Wounds: map[string]int{"slash": 1},
	}
	if err := s.SaveAftermath(first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := domain.NewCombatSession("combat-2", "")
	second.Entities["hero"] = &domain.Entity{
		ID: "hero", Tier: domain.TierFull, Alive: true,
		Wounds: map[string]int{"slash": 3, "crush": 1},
	}
	if err := s.SaveAftermath(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	wounds, err := s.LoadWounds("hero")
	if err != nil {
		t.Fatalf("load wounds: %v", err)
	}
	if wounds["slash"] != 3 || wounds["crush"] != 1 {
		t.Errorf("wounds = %v, want the latest combat's snapshot", wounds)
	}
}

func TestLoadWoundsUnknownEntity(t *testing.T) {
	s := openTestStore(t)
	wounds, err := s.LoadWounds("nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wounds != nil {
		t.Errorf("wounds = %v, want nil", wounds)
	}
}
