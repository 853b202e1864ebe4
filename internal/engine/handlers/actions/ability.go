package actions

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/systems"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// HandleAbility заявляет произвольную способность. Сервер проверяет и
// списывает только ресурсы; содержимое эффекта - непрозрачные данные,
// которые интерпретирует стол (форвардятся в событии как есть).
func HandleAbility(ctx handlers.Context, p api.AbilityPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequireTurn(ctx, e); err != nil {
		return r, err
	}
	if !e.AP.CanSpend(p.APCost) {
		return r, handlers.Reject("not enough AP for this ability")
	}
	if !e.Energy.CanSpend(p.EnergyCost) {
		return r, handlers.Reject("not enough Energy for this ability")
	}

	e.AP.Spend(p.APCost)
	e.Energy.Spend(p.EnergyCost)
	endure := systems.CheckEnergyDepleted(e)

	r.Broadcast(api.EvtAbilityDeclared, api.AbilityDeclaredView{
		EntityID:   e.ID,
		Name:       p.Name,
		APCost:     p.APCost,
		EnergyCost: p.EnergyCost,
		Effect:     p.Effect,
	})
	r.EntityUpdated(e)
	handlers.HandleDamageEvents(&r, e, endure, false, false)
	return r, nil
}

// HandleReaction разыгрывает взведенный триггер внутри окна реакции.
// Легально только в фазе reaction-interrupt и только для сущности,
// чей триггер открыл окно. Триггер одноразовый.
func HandleReaction(ctx handlers.Context, p api.AbilityPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequirePhase(ctx, domain.PhaseReaction); err != nil {
		return r, err
	}
	if e.ReadiedTrigger == "" {
		return r, handlers.Reject("entity has no readied action")
	}
	if !e.CanAct() {
		return r, handlers.Reject("entity cannot act right now")
	}
	if !e.AP.CanSpend(p.APCost) {
		return r, handlers.Reject("not enough AP for this reaction")
	}
	if !e.Energy.CanSpend(p.EnergyCost) {
		return r, handlers.Reject("not enough Energy for this reaction")
	}

	e.AP.Spend(p.APCost)
	e.Energy.Spend(p.EnergyCost)
	endure := systems.CheckEnergyDepleted(e)
	e.ReadiedTrigger = ""
	ctx.State.Phase = domain.PhaseActive

	r.Broadcast(api.EvtReactionDeclared, api.AbilityDeclaredView{
		EntityID:   e.ID,
		Name:       p.Name,
		APCost:     p.APCost,
		EnergyCost: p.EnergyCost,
		Effect:     p.Effect,
	})
	r.EntityUpdated(e)
	handlers.HandleDamageEvents(&r, e, endure, false, false)
	handlers.EnsureCurrentCanAct(ctx, &r)
	return r, nil
}
