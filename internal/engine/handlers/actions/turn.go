package actions

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// HandleEndTurn завершает ход текущей сущности.
// Реген энергии приходит в команде (бросается за столом), сервер
// только зажимает его в [0, Max-Current].
func HandleEndTurn(ctx handlers.Context, p api.EndTurnPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequirePhase(ctx, domain.PhaseActive); err != nil {
		return r, err
	}
	if ctx.State.CurrentEntityID != e.ID {
		return r, handlers.Reject("it is not this entity's turn")
	}
	if e.EndurePending || e.DeathCheckPending {
		return r, handlers.Reject("a pending check must be resolved before ending the turn")
	}

	regen := p.EnergyRegen
	if regen < 0 {
		regen = 0
	}
	if room := e.Energy.Max - e.Energy.Current; regen > room {
		regen = room
	}
	e.Energy.Restore(regen)

	r.Broadcast(api.EvtTurnEnded, api.TurnEndedView{EntityID: e.ID, EnergyRegen: regen})
	r.EntityUpdated(e)
	handlers.AdvanceTurn(ctx, &r)
	return r, nil
}

// HandleDelayTurn переносит строку текущей сущности в конец трекера
// (бросок сохраняется) и немедленно отдает ход следующему.
func HandleDelayTurn(ctx handlers.Context, p api.DelayTurnPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequireTurn(ctx, e); err != nil {
		return r, err
	}

	state := ctx.State
	idx := state.InitiativeIndexOf(e.ID)
	entry := state.Initiative[idx]
	state.Initiative = append(state.Initiative[:idx], state.Initiative[idx+1:]...)
	state.Initiative = append(state.Initiative, entry)

	// Ход уходит сущности, вставшей на место задержавшейся.
	// Если та была последней - цикл замкнется на нее же.
	state.CurrentTurnIndex = idx - 1
	state.CurrentEntityID = ""

	r.Broadcast(api.EvtInitiativeUpdated, handlers.InitiativeViews(state.Initiative))
	handlers.AdvanceTurn(ctx, &r)
	return r, nil
}

// HandleReadyAction взводит триггер реакции. Ход НЕ завершается:
// сущность может двигаться и действовать дальше, триггер висит
// до срабатывания, конца боя или следующего READY_ACTION.
func HandleReadyAction(ctx handlers.Context, p api.ReadyActionPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequireTurn(ctx, e); err != nil {
		return r, err
	}

	e.ReadiedTrigger = p.Trigger
	r.EntityUpdated(e)
	return r, nil
}
