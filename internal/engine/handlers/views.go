package handlers

import (
	"sort"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// Конвертация домена в DTO. Доменные структуры наружу не отдаем.

func ToHexCoord(p domain.Position) api.HexCoord {
	return api.HexCoord{Q: p.Q, R: p.R}
}

func FromHexCoord(h api.HexCoord) domain.Position {
	return domain.Position{Q: h.Q, R: h.R}
}

func toSortedSet(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func ToChannelingView(c *domain.ChannelingState) *api.ChannelingView {
	if c == nil {
		return nil
	}
	return &api.ChannelingView{
		SpellName:       c.SpellName,
		DamageType:      c.DamageType,
		Intensity:       c.Intensity,
		TotalCost:       c.TotalCost,
		EnergyChanneled: c.EnergyChanneled,
		APChanneled:     c.APChanneled,
		Progress:        c.Progress(),
	}
}

// ToEntityView конвертирует сущность в DTO.
func ToEntityView(e *domain.Entity) api.EntityView {
	return api.EntityView{
		ID:                e.ID,
		Name:              e.Name,
		Faction:           e.Faction,
		Tier:              e.Tier,
		Controller:        e.Controller,
		AP:                api.ResourceView{Current: e.AP.Current, Max: e.AP.Max},
		Energy:            api.ResourceView{Current: e.Energy.Current, Max: e.Energy.Max},
		Physical:          e.Physical,
		Skills:            e.Skills,
		Immunities:        toSortedSet(e.Immunities),
		Resistances:       toSortedSet(e.Resistances),
		Weaknesses:        toSortedSet(e.Weaknesses),
		Wounds:            e.Wounds,
		Unconscious:       e.Unconscious,
		Alive:             e.Alive,
		Channeling:        ToChannelingView(e.Channeling),
		Readied:           e.ReadiedTrigger,
		EndurePending:     e.EndurePending,
		DeathCheckPending: e.DeathCheckPending,
	}
}

func toRollView(r domain.ContestRoll) api.RollView {
	return api.RollView{
		Skill:     r.Skill,
		DiceCount: r.DiceCount,
		Keep:      string(r.Keep),
		Rolls:     r.Rolls,
		Selected:  r.Selected,
		Modifier:  r.Modifier,
		Total:     r.Total,
	}
}

func ToAttackOutcomeView(a *domain.AttackOutcome) *api.AttackOutcomeView {
	if a == nil {
		return nil
	}
	return &api.AttackOutcomeView{
		AttackerID:  a.AttackerID,
		TargetID:    a.TargetID,
		Weapon:      a.Weapon,
		Hit:         a.Hit,
		CritTier:    a.CritTier,
		DamageType:  a.DamageType,
		FinalDamage: a.FinalDamage,
		WoundsDealt: a.WoundsDealt,
		TargetDied:  a.TargetDied,
	}
}

// ToContestView конвертирует контест в DTO.
func ToContestView(c *domain.SkillContest) *api.ContestView {
	if c == nil {
		return nil
	}
	view := &api.ContestView{
		ID:            c.ID,
		Kind:          string(c.Kind),
		InitiatorID:   c.InitiatorID,
		ResponderID:   c.ResponderID,
		InitiatorRoll: toRollView(c.InitiatorRoll),
		Resolved:      c.Resolved,
		WinnerID:      c.WinnerID,
		IsTie:         c.IsTie,
		Margin:        c.Margin,
		Attack:        ToAttackOutcomeView(c.Attack),
	}
	if c.ResponderRoll != nil {
		rv := toRollView(*c.ResponderRoll)
		view.ResponderRoll = &rv
	}
	return view
}

// EntityUpdated - стандартное событие "сущность изменилась":
// клиентский редьюсер целиком замещает свою копию сущности.
func (r *Result) EntityUpdated(e *domain.Entity) {
	view := ToEntityView(e)
	r.Broadcast(api.EvtEntityLifecycle, api.EntityLifecycleView{
		Action:   api.LifecycleUpdated,
		EntityID: e.ID,
		Entity:   &view,
	})
}

// BuildStateSync собирает полный снимок сессии для конкретного получателя.
// Снимок самодостаточен: клиент обязан заменить им ВСЁ локальное состояние.
func BuildStateSync(ctx Context) api.StateSyncView {
	state := ctx.State

	entities := make([]api.EntityView, 0, len(state.Entities))
	ids := make([]string, 0, len(state.Entities))
	for id := range state.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids) // детерминированный порядок для тестов и диффов
	for _, id := range ids {
		entities = append(entities, ToEntityView(state.Entities[id]))
	}

	initiative := make([]api.InitiativeView, len(state.Initiative))
	for i, entry := range state.Initiative {
		initiative[i] = api.InitiativeView{
			EntityID:   entry.EntityID,
			Roll:       entry.Roll,
			Tiebreaker: entry.Tiebreaker,
		}
	}

	positions := make(map[string]api.HexCoord, len(state.Positions))
	for id, pos := range state.Positions {
		positions[id] = ToHexCoord(pos)
	}

	obstacles := make([]api.HexCoord, len(state.Map.Obstacles))
	for i, o := range state.Map.Obstacles {
		obstacles[i] = ToHexCoord(o)
	}

	var pending []api.ContestView
	for _, c := range state.PendingContests {
		pending = append(pending, *ToContestView(c))
	}

	// Список подконтрольных сущностей ПОЛУЧАТЕЛЯ
	controlled := make([]string, 0)
	for _, id := range ids {
		if ctx.Client.Controls(state.Entities[id]) && !ctx.Client.IsGM {
			controlled = append(controlled, id)
		}
	}
	if ctx.Client.IsGM {
		controlled = ids
	}

	return api.StateSyncView{
		CombatID:        state.ID,
		CampaignID:      state.CampaignID,
		Phase:           string(state.Phase),
		Round:           state.Round,
		TurnIndex:       state.CurrentTurnIndex,
		CurrentEntityID: state.CurrentEntityID,
		Version:         state.Version,
		Entities:        entities,
		Initiative:      initiative,
		Positions:       positions,
		Grid: api.GridConfigView{
			Width:   state.Grid.Width,
			Height:  state.Grid.Height,
			HexSize: state.Grid.HexSize,
		},
		Map: api.MapConfigView{
			Name:       state.Map.Name,
			Background: state.Map.Background,
			Obstacles:  obstacles,
		},
		PendingContests:     pending,
		ActiveContest:       ToContestView(state.ActiveContest),
		ControlledEntityIDs: controlled,
		IsGM:                ctx.Client.IsGM,
	}
}
