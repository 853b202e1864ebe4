package domain

import "fmt"

// Phase - фаза конечного автомата боевой сессии.
type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseInitiative Phase = "initiative"
	PhaseActive     Phase = "active"
	PhaseReaction   Phase = "reaction-interrupt"
	PhaseResolution Phase = "resolution"
	PhaseCompleted  Phase = "completed"
)

// ParsePhase валидирует строку фазы (для GM-патча).
func ParsePhase(s string) (Phase, bool) {
	switch Phase(s) {
	case PhaseSetup, PhaseInitiative, PhaseActive, PhaseReaction, PhaseResolution, PhaseCompleted:
		return Phase(s), true
	}
	return "", false
}

// InitiativeEntry - строка трекера инициативы.
// Tiebreaker - вторичное случайное значение, детерминированно
// разрешающее равные броски (больше - раньше).
type InitiativeEntry struct {
	EntityID   string `json:"entityId"`
	Roll       int    `json:"roll"`
	Tiebreaker int    `json:"tiebreaker"`
}

// GridConfig и MapConfig - презентационные настройки. Сессия владеет
// ими только ради единого источника истины; движок смотрит лишь на
// габариты сетки и список непроходимых клеток.
type GridConfig struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	HexSize int `json:"hexSize,omitempty"`
}

type MapConfig struct {
	Name       string     `json:"name,omitempty"`
	Background string     `json:"background,omitempty"`
	Obstacles  []Position `json:"obstacles,omitempty"`
}

// CombatSession - единственный изменяемый агрегат сессии.
// Мутируется строго одним writer'ом (актором сессии); Version растет
// на каждой принятой мутации.
type CombatSession struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaignId,omitempty"`

	Phase Phase `json:"phase"`

	Round            int    `json:"round"`
	CurrentTurnIndex int    `json:"currentTurnIndex"`
	CurrentEntityID  string `json:"currentEntityId,omitempty"`

	Version uint64 `json:"version"`

	Entities   map[string]*Entity  `json:"entities"`
	Initiative []InitiativeEntry   `json:"initiative"`
	Positions  map[string]Position `json:"positions"`

	Grid GridConfig `json:"grid"`
	Map  MapConfig  `json:"map"`

	PendingContests []*SkillContest `json:"pendingContests,omitempty"`
	ActiveContest   *SkillContest   `json:"activeContest,omitempty"`
}

// NewCombatSession создает сессию в фазе setup.
func NewCombatSession(id, campaignID string) *CombatSession {
	return &CombatSession{
		ID:         id,
		CampaignID: campaignID,
		Phase:      PhaseSetup,
		Entities:   make(map[string]*Entity),
		Positions:  make(map[string]Position),
	}
}

// Entity возвращает сущность по ID (nil, если нет).
func (s *CombatSession) Entity(id string) *Entity {
	return s.Entities[id]
}

// IsOccupied проверяет, занята ли клетка другой сущностью.
func (s *CombatSession) IsOccupied(pos Position, excludeID string) bool {
	for id, p := range s.Positions {
		if id == excludeID {
			continue
		}
		if p == pos {
			// Трупы клетку не занимают
			if e := s.Entities[id]; e != nil && !e.Alive {
				continue
			}
			return true
		}
	}
	return false
}

// InBounds проверяет попадание в сетку. Нулевые габариты = без границ.
func (s *CombatSession) InBounds(pos Position) bool {
	if s.Grid.Width <= 0 || s.Grid.Height <= 0 {
		return true
	}
	return pos.Q >= 0 && pos.Q < s.Grid.Width && pos.R >= 0 && pos.R < s.Grid.Height
}

// Impassable проверяет клетку по списку препятствий карты.
func (s *CombatSession) Impassable(pos Position) bool {
	for _, o := range s.Map.Obstacles {
		if o == pos {
			return true
		}
	}
	return false
}

// InitiativeIndexOf возвращает позицию сущности в инициативе (-1, если нет).
func (s *CombatSession) InitiativeIndexOf(entityID string) int {
	for i, entry := range s.Initiative {
		if entry.EntityID == entityID {
			return i
		}
	}
	return -1
}

// Validate проверяет инварианты агрегата. Нарушение означает баг
// в мутации: Session Store обязан отказаться от коммита и оставить
// прежнее состояние нетронутым.
func (s *CombatSession) Validate() error {
	for id, e := range s.Entities {
		if e.ID != id {
			return fmt.Errorf("entity key %q does not match entity id %q", id, e.ID)
		}
		if e.AP.Current < 0 || e.AP.Current > e.AP.Max {
			return fmt.Errorf("entity %s: ap %d out of [0, %d]", id, e.AP.Current, e.AP.Max)
		}
		if e.Energy.Current < 0 || e.Energy.Current > e.Energy.Max {
			return fmt.Errorf("entity %s: energy %d out of [0, %d]", id, e.Energy.Current, e.Energy.Max)
		}
		for wt, count := range e.Wounds {
			if count < 0 {
				return fmt.Errorf("entity %s: negative wound counter %s=%d", id, wt, count)
			}
		}
		if e.Tier == TierMinion && len(e.Wounds) > 0 {
			return fmt.Errorf("entity %s: minion must not track wounds", id)
		}
	}

	seen := make(map[string]bool, len(s.Initiative))
	for _, entry := range s.Initiative {
		if s.Entities[entry.EntityID] == nil {
			return fmt.Errorf("initiative references unknown entity %s", entry.EntityID)
		}
		if seen[entry.EntityID] {
			return fmt.Errorf("duplicate initiative entry for %s", entry.EntityID)
		}
		seen[entry.EntityID] = true
	}

	for id := range s.Positions {
		if s.Entities[id] == nil {
			return fmt.Errorf("position references unknown entity %s", id)
		}
	}

	if s.CurrentEntityID != "" {
		cur := s.Entities[s.CurrentEntityID]
		if cur == nil {
			return fmt.Errorf("currentEntityId %s is not a known entity", s.CurrentEntityID)
		}
		if !cur.Alive {
			return fmt.Errorf("currentEntityId %s is not alive", s.CurrentEntityID)
		}
	}

	if s.Round < 0 {
		return fmt.Errorf("round is negative: %d", s.Round)
	}
	return nil
}

// Clone возвращает глубокую копию агрегата. Используется актором
// сессии как бэкап для отката при нарушении инвариантов.
func (s *CombatSession) Clone() *CombatSession {
	cp := *s

	cp.Entities = make(map[string]*Entity, len(s.Entities))
	for id, e := range s.Entities {
		cp.Entities[id] = e.Clone()
	}

	cp.Positions = make(map[string]Position, len(s.Positions))
	for id, p := range s.Positions {
		cp.Positions[id] = p
	}

	cp.Initiative = append([]InitiativeEntry(nil), s.Initiative...)
	cp.Map.Obstacles = append([]Position(nil), s.Map.Obstacles...)

	if s.PendingContests != nil {
		cp.PendingContests = make([]*SkillContest, len(s.PendingContests))
		for i, c := range s.PendingContests {
			cp.PendingContests[i] = c.Clone()
		}
	}
	if s.ActiveContest != nil {
		cp.ActiveContest = s.ActiveContest.Clone()
	}
	return &cp
}
