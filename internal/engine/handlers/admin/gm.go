// Package admin содержит хендлеры команд ГМа: прямые правки состояния
// в обход обычных правил легальности. Инварианты агрегата при этом
// остаются обязательными - актор сессии откатит и GM-команду.
package admin

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/systems"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
)

// HandleOverride - точечный патч полей сущности и/или фазы сессии.
// nil-поля не трогаются; клампов нет, но инварианты 0<=cur<=max
// проверит актор после мутации.
func HandleOverride(ctx handlers.Context, p api.GMOverridePayload) (handlers.Result, error) {
	var r handlers.Result

	if p.Phase != "" {
		phase, ok := domain.ParsePhase(p.Phase)
		if !ok {
			return r, handlers.Rejectf("unknown phase %q", p.Phase)
		}
		ctx.State.Phase = phase
		if phase != domain.PhaseActive {
			// Фаза без текущего хода
			if phase == domain.PhaseSetup || phase == domain.PhaseInitiative || phase == domain.PhaseCompleted {
				ctx.State.CurrentEntityID = ""
			}
		}
	}

	if p.EntityID != "" {
		e, err := handlers.RequireEntity(ctx, p.EntityID)
		if err != nil {
			return r, err
		}
		if p.APMax != nil {
			e.AP.Max = *p.APMax
		}
		if p.AP != nil {
			e.AP.Current = *p.AP
		}
		if p.EnergyMax != nil {
			e.Energy.Max = *p.EnergyMax
		}
		if p.Energy != nil {
			e.Energy.Current = *p.Energy
		}
		if p.Alive != nil {
			e.Alive = *p.Alive
			if !e.Alive {
				e.Channeling = nil
				r.Broadcast(api.EvtEntityDied, api.VitalityView{EntityID: e.ID})
			}
		}
		if p.Unconscious != nil {
			e.Unconscious = *p.Unconscious
			if e.Unconscious {
				// Навязанный стан - непроизвольный разрыв канала,
				// откат применяется как при прерывании уроном
				if ch := e.Channeling; ch != nil {
					blowback := systems.InterruptChanneling(e)
					e.AddWounds(ch.DamageType, ctx.Rules.WoundsFor(blowback))
					e.Energy.Current -= blowback
					if e.Energy.Current < 0 {
						e.Energy.Current = 0
					}
					r.Broadcast(api.EvtChannelingInterrupted, api.ChannelingInterruptedView{
						EntityID: e.ID,
						Reason:   "unconscious",
						Blowback: blowback,
					})
				}
				e.ReadiedTrigger = ""
				r.Broadcast(api.EvtEntityUnconscious, api.VitalityView{EntityID: e.ID})
			}
		}
		if p.Wounds != nil {
			e.Wounds = p.Wounds
		}
		if p.Controller != nil {
			e.Controller = *p.Controller
		}
		if p.ClearReadied {
			e.ReadiedTrigger = ""
		}
		r.EntityUpdated(e)
	}

	logger.Log.WithFields(logrus.Fields{
		"combat_id": ctx.State.ID,
		"entity_id": p.EntityID,
		"phase":     p.Phase,
	}).Info("GM override applied")

	handlers.EnsureCurrentCanAct(ctx, &r)
	// Явный откат в initiative уважаем: полный трекер не должен
	// немедленно вытолкнуть сессию обратно в active
	if domain.Phase(p.Phase) != domain.PhaseInitiative {
		handlers.ResumeTurnFlow(ctx, &r)
	}
	return r, nil
}

// HandleMoveEntity - принудительный телепорт. Игнорирует дистанцию
// и стоимость; геометрия (границы, препятствия, занятые клетки)
// проверяется, пока ГМ не поднял IgnoreLegality.
func HandleMoveEntity(ctx handlers.Context, p api.GMMovePayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireEntity(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	to := handlers.FromHexCoord(p.To)
	if !p.IgnoreLegality {
		if !ctx.State.InBounds(to) {
			return r, handlers.Reject("destination is out of bounds")
		}
		if ctx.State.Impassable(to) {
			return r, handlers.Reject("destination is impassable terrain")
		}
		if ctx.State.IsOccupied(to, e.ID) {
			return r, handlers.Reject("destination is occupied")
		}
	}

	if p.ChargeAP {
		from, ok := ctx.State.Positions[e.ID]
		if ok {
			cost := systems.MoveCost(from.DistanceTo(to), e.Physical, ctx.Rules.MovementFloor)
			if !e.AP.Spend(cost) {
				return r, handlers.Reject("not enough AP to charge for this movement")
			}
			r.EntityUpdated(e)
		}
	}
	ctx.State.Positions[e.ID] = to

	r.Broadcast(api.EvtEntityPositionUpdated, api.PositionUpdatedView{EntityID: e.ID, To: p.To})
	return r, nil
}

// HandleApplyDamage - прямой урон (или лечение при отрицательном
// значении) через общий пайплайн жизнеспособности.
func HandleApplyDamage(ctx handlers.Context, p api.GMDamagePayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireEntity(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if p.Amount > 0 {
		if reason, ok := systems.CanReceiveDamage(e); !ok {
			return r, handlers.Reject(reason)
		}
	}

	out := systems.ApplyDamage(e, p.Amount, p.DamageType, ctx.Rules)
	r.EntityUpdated(e)

	if out.ChannelingInterrupted {
		r.Broadcast(api.EvtChannelingInterrupted, api.ChannelingInterruptedView{
			EntityID: e.ID,
			Reason:   "damage",
			Blowback: out.Blowback,
		})
	}
	handlers.HandleDamageEvents(&r, e, out.EndureRequired, out.DeathCheckRequired, out.Died)
	handlers.EnsureCurrentCanAct(ctx, &r)
	return r, nil
}

// HandleModifyResources выставляет текущие/максимальные значения
// AP и Energy с клампом (в отличие от сырого GM_OVERRIDE).
func HandleModifyResources(ctx handlers.Context, p api.GMResourcesPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireEntity(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if p.APMax != nil {
		e.AP.Max = *p.APMax
		e.AP.Set(e.AP.Current)
	}
	if p.AP != nil {
		e.AP.Set(*p.AP)
	}
	if p.EnergyMax != nil {
		e.Energy.Max = *p.EnergyMax
		e.Energy.Set(e.Energy.Current)
	}
	if p.Energy != nil {
		e.Energy.Set(*p.Energy)
	}

	r.EntityUpdated(e)
	return r, nil
}

// HandleAddEntity вводит сущность в бой на лету: подкрепление врывается
// в ИДУЩИЙ раунд со своим броском инициативы. Раны загружаются из
// архива прошлых боев - они переживают сессию.
func HandleAddEntity(ctx handlers.Context, p api.GMAddEntityPayload) (handlers.Result, error) {
	var r handlers.Result

	spec := p.Entity
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	if ctx.State.Entity(id) != nil {
		return r, handlers.Rejectf("entity %s already exists", id)
	}

	pos := handlers.FromHexCoord(p.Position)
	if !ctx.State.InBounds(pos) {
		return r, handlers.Reject("spawn position is out of bounds")
	}
	if ctx.State.Impassable(pos) {
		return r, handlers.Reject("spawn position is impassable terrain")
	}
	if ctx.State.IsOccupied(pos, id) {
		return r, handlers.Reject("spawn position is occupied")
	}

	e := &domain.Entity{
		ID:          id,
		Name:        spec.Name,
		Faction:     spec.Faction,
		Tier:        spec.Tier,
		Controller:  spec.Controller,
		AP:          domain.Resource{Current: spec.APMax, Max: spec.APMax},
		Energy:      domain.Resource{Current: spec.EnergyMax, Max: spec.EnergyMax},
		Physical:    spec.Physical,
		Skills:      spec.Skills,
		Immunities:  toBoolSet(spec.Immunities),
		Resistances: toBoolSet(spec.Resistances),
		Weaknesses:  toBoolSet(spec.Weaknesses),
		Alive:       true,
	}

	if e.Tier != domain.TierMinion && ctx.Archive != nil {
		wounds, err := ctx.Archive.LoadWounds(id)
		if err != nil {
			logger.Log.WithField("entity_id", id).WithError(err).Warn("Failed to load persisted wounds")
		} else if len(wounds) > 0 {
			e.Wounds = wounds
		}
	}

	ctx.State.Entities[id] = e
	ctx.State.Positions[id] = pos

	view := handlers.ToEntityView(e)
	r.Broadcast(api.EvtEntityLifecycle, api.EntityLifecycleView{
		Action:   api.LifecycleAdded,
		EntityID: id,
		Entity:   &view,
	})

	// В идущем бою подкрепление сразу встает в трекер
	if ctx.State.Phase == domain.PhaseActive || ctx.State.Phase == domain.PhaseInitiative {
		handlers.InsertInitiative(ctx.State, domain.InitiativeEntry{
			EntityID:   id,
			Roll:       p.InitiativeRoll,
			Tiebreaker: ctx.Rng.Intn(1_000_000),
		})
		r.Broadcast(api.EvtInitiativeUpdated, handlers.InitiativeViews(ctx.State.Initiative))
	}

	// Подкрепление могло закрыть последнюю дыру в трекере инициативы
	handlers.ResumeTurnFlow(ctx, &r)
	return r, nil
}

// HandleRemoveEntity убирает сущность из боя целиком: из трекера,
// с сетки и из списка. Если убрали текущую - ход немедленно уходит дальше.
func HandleRemoveEntity(ctx handlers.Context, p api.GMRemoveEntityPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireEntity(ctx, p.EntityID)
	if err != nil {
		return r, err
	}

	handlers.RemoveFromInitiative(ctx, &r, e.ID)
	delete(ctx.State.Positions, e.ID)
	delete(ctx.State.Entities, e.ID)

	// Висящие контесты с участием удаленной сущности аннулируются
	dropContestsWith(ctx, &r, e.ID)

	r.Broadcast(api.EvtEntityLifecycle, api.EntityLifecycleView{
		Action:   api.LifecycleRemoved,
		EntityID: e.ID,
	})

	// Уход последнего несдавшего бросок не должен замораживать initiative
	handlers.ResumeTurnFlow(ctx, &r)
	return r, nil
}

// HandleGridConfig обновляет габариты сетки.
func HandleGridConfig(ctx handlers.Context, p api.GridConfigPayload) (handlers.Result, error) {
	var r handlers.Result

	if p.Width < 0 || p.Height < 0 {
		return r, handlers.Reject("grid dimensions must not be negative")
	}
	ctx.State.Grid = domain.GridConfig{Width: p.Width, Height: p.Height, HexSize: p.HexSize}

	r.Broadcast(api.EvtGridConfigUpdated, api.GridConfigView{
		Width:   p.Width,
		Height:  p.Height,
		HexSize: p.HexSize,
	})
	return r, nil
}

// HandleMapConfig замещает настройки карты целиком.
func HandleMapConfig(ctx handlers.Context, p api.MapConfigPayload) (handlers.Result, error) {
	var r handlers.Result

	obstacles := make([]domain.Position, len(p.Obstacles))
	for i, h := range p.Obstacles {
		obstacles[i] = handlers.FromHexCoord(h)
	}
	ctx.State.Map = domain.MapConfig{
		Name:       p.Name,
		Background: p.Background,
		Obstacles:  obstacles,
	}

	r.Broadcast(api.EvtMapConfigUpdated, api.MapConfigView{
		Name:       p.Name,
		Background: p.Background,
		Obstacles:  p.Obstacles,
	})
	return r, nil
}

func toBoolSet(keys []string) map[string]bool {
	if len(keys) == 0 {
		return nil
	}
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// dropContestsWith вычищает контесты, ссылающиеся на сущность.
// Если аннулирован активный - следующий из очереди выходит на его место.
func dropContestsWith(ctx handlers.Context, r *handlers.Result, entityID string) {
	state := ctx.State

	kept := state.PendingContests[:0]
	for _, c := range state.PendingContests {
		if c.InitiatorID == entityID || c.ResponderID == entityID {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		state.PendingContests = nil
	} else {
		state.PendingContests = kept
	}

	if c := state.ActiveContest; c != nil && (c.InitiatorID == entityID || c.ResponderID == entityID) {
		state.ActiveContest = nil
		if state.Phase == domain.PhaseResolution {
			state.Phase = domain.PhaseActive
		}
		if len(state.PendingContests) > 0 {
			next := state.PendingContests[0]
			state.PendingContests = state.PendingContests[1:]
			state.ActiveContest = next
			if next.Kind == domain.ContestAttack {
				state.Phase = domain.PhaseResolution
			}
			r.Broadcast(api.EvtSkillContestResponseRequested, handlers.ToContestView(next))
		}
	}
}
