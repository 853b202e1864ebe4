package actions

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// HandleStartCombat: setup -> initiative. Только ГМ (гейт в диспетчере).
func HandleStartCombat(ctx handlers.Context) (handlers.Result, error) {
	var r handlers.Result

	if err := handlers.RequirePhase(ctx, domain.PhaseSetup); err != nil {
		return r, err
	}
	if len(ctx.State.Entities) == 0 {
		return r, handlers.Reject("cannot start combat without entities")
	}

	ctx.State.Phase = domain.PhaseInitiative
	r.Broadcast(api.EvtCombatStarted, nil)
	return r, nil
}

// HandleEndCombat завершает бой командой ГМа из любой фазы.
func HandleEndCombat(ctx handlers.Context) (handlers.Result, error) {
	var r handlers.Result

	if ctx.State.Phase == domain.PhaseCompleted {
		return r, handlers.Reject("combat is already completed")
	}

	handlers.CompleteCombat(ctx, &r)
	return r, nil
}

// HandleSubmitInitiative принимает бросок инициативы.
// Вход в active происходит только когда КАЖДАЯ живая сущность
// имеет ровно одну строку трекера.
func HandleSubmitInitiative(ctx handlers.Context, p api.InitiativeRollPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequirePhase(ctx, domain.PhaseInitiative); err != nil {
		return r, err
	}
	if ctx.State.InitiativeIndexOf(e.ID) >= 0 {
		return r, handlers.Reject("initiative already submitted for this entity")
	}

	// Tiebreaker - вторичное случайное значение. Фиксируется в строке
	// трекера, поэтому порядок воспроизводим для любого наблюдателя.
	ctx.State.Initiative = append(ctx.State.Initiative, domain.InitiativeEntry{
		EntityID:   e.ID,
		Roll:       p.Roll,
		Tiebreaker: ctx.Rng.Intn(1_000_000),
	})

	if handlers.AllInitiativeSubmitted(ctx.State) {
		handlers.BeginFirstRound(ctx, &r)
	} else {
		r.Broadcast(api.EvtInitiativeUpdated, handlers.InitiativeViews(ctx.State.Initiative))
	}
	return r, nil
}
