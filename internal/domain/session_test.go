package domain

import "testing"

func testSession() *CombatSession {
	s := NewCombatSession("combat-1", "campaign-1")
	s.Entities["a"] = &Entity{
		ID: "a", Tier: TierFull, Alive: true,
		AP:     Resource{Current: 3, Max: 3},
		Energy: Resource{Current: 10, Max: 10},
	}
	s.Entities["b"] = &Entity{
		ID: "b", Tier: TierMinion, Alive: true,
		AP:     Resource{Current: 2, Max: 2},
		Energy: Resource{Current: 5, Max: 5},
	}
	s.Positions["a"] = Position{0, 0}
	s.Positions["b"] = Position{2, 0}
	return s
}

func TestValidateAcceptsConsistentState(t *testing.T) {
	if err := testSession().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateCatchesViolations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CombatSession)
	}{
		{"ap above max", func(s *CombatSession) { s.Entities["a"].AP.Current = 99 }},
		{"negative energy", func(s *CombatSession) { s.Entities["a"].Energy.Current = -1 }},
		{"minion with wounds", func(s *CombatSession) { s.Entities["b"].Wounds = map[string]int{"slash": 1} }},
		{"negative wound counter", func(s *CombatSession) { s.Entities["a"].Wounds = map[string]int{"slash": -2} }},
		{"initiative references ghost", func(s *CombatSession) {
			s.Initiative = []InitiativeEntry{{EntityID: "ghost", Roll: 10}}
		}},
		{"duplicate initiative entry", func(s *CombatSession) {
			s.Initiative = []InitiativeEntry{{EntityID: "a", Roll: 10}, {EntityID: "a", Roll: 5}}
		}},
		{"position references ghost", func(s *CombatSession) { s.Positions["ghost"] = Position{1, 1} }},
		{"current entity unknown", func(s *CombatSession) { s.CurrentEntityID = "ghost" }},
		{"current entity dead", func(s *CombatSession) {
			s.Entities["a"].Alive = false
			s.CurrentEntityID = "a"
		}},
		{"entity key mismatch", func(s *CombatSession) { s.Entities["a"].ID = "z" }},
		{"negative round", func(s *CombatSession) { s.Round = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testSession()
			tc.mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestIsOccupiedIgnoresCorpses(t *testing.T) {
	s := testSession()

	if !s.IsOccupied(Position{2, 0}, "a") {
		t.Error("living entity must occupy its hex")
	}
	s.Entities["b"].Alive = false
	if s.IsOccupied(Position{2, 0}, "a") {
		t.Error("corpse must not block the hex")
	}
	if s.IsOccupied(Position{2, 0}, "b") {
		t.Error("entity must not block itself")
	}
}

func TestInBounds(t *testing.T) {
	s := testSession()

	// Нулевые габариты - сетка без границ
	if !s.InBounds(Position{-100, 100}) {
		t.Error("zero-sized grid must be unbounded")
	}

	s.Grid = GridConfig{Width: 10, Height: 8}
	if !s.InBounds(Position{9, 7}) {
		t.Error("corner hex must be in bounds")
	}
	if s.InBounds(Position{10, 0}) || s.InBounds(Position{0, 8}) || s.InBounds(Position{-1, 0}) {
		t.Error("out-of-range hexes must be rejected")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := testSession()
	s.Initiative = []InitiativeEntry{{EntityID: "a", Roll: 15}}
	s.Map.Obstacles = []Position{{5, 5}}
	s.ActiveContest = &SkillContest{ID: "c1", InitiatorID: "a"}

	cp := s.Clone()
	cp.Entities["a"].AP.Current = 0
	cp.Positions["a"] = Position{9, 9}
	cp.Initiative[0].Roll = 1
	cp.Map.Obstacles[0] = Position{0, 0}
	cp.ActiveContest.ID = "other"

	if s.Entities["a"].AP.Current != 3 {
		t.Error("Clone must not share entities")
	}
	if s.Positions["a"] != (Position{0, 0}) {
		t.Error("Clone must not share positions")
	}
	if s.Initiative[0].Roll != 15 {
		t.Error("Clone must not share initiative")
	}
	if s.Map.Obstacles[0] != (Position{5, 5}) {
		t.Error("Clone must not share obstacles")
	}
	if s.ActiveContest.ID != "c1" {
		t.Error("Clone must not share contests")
	}
}

func TestParseAction(t *testing.T) {
	if got := ParseAction("declare_attack"); got != ActionDeclareAttack {
		t.Errorf("ParseAction is case-insensitive, got %v", got)
	}
	if got := ParseAction("NO_SUCH_COMMAND"); got != ActionUnknown {
		t.Errorf("unknown command must map to ActionUnknown, got %v", got)
	}
	if ActionDeclareAttack.String() != "DECLARE_ATTACK" {
		t.Errorf("String() = %q", ActionDeclareAttack.String())
	}
}

func TestIsGMOnly(t *testing.T) {
	gmOnly := []ActionType{
		ActionStartCombat, ActionEndCombat, ActionGMOverride, ActionGMMoveEntity,
		ActionGMApplyDamage, ActionGMModifyResources, ActionGMAddEntity,
		ActionGMRemoveEntity, ActionUpdateMapConfig, ActionUpdateGridConfig,
	}
	for _, a := range gmOnly {
		if !a.IsGMOnly() {
			t.Errorf("%s must be GM-only", a)
		}
	}
	for _, a := range []ActionType{ActionEndTurn, ActionDeclareAttack, ActionRequestState} {
		if a.IsGMOnly() {
			t.Errorf("%s must not be GM-only", a)
		}
	}
}
