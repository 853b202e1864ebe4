package actions

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/systems"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// emitDamageFallout переводит DamageOutcome в события протокола.
// Общий хвост для атак, контестов, выпуска заклинаний и урона ГМа.
func emitDamageFallout(r *handlers.Result, target *domain.Entity, out systems.DamageOutcome) {
	if out.ChannelingInterrupted {
		r.Broadcast(api.EvtChannelingInterrupted, api.ChannelingInterruptedView{
			EntityID: target.ID,
			Reason:   "damage",
			Blowback: out.Blowback,
		})
	}
	handlers.HandleDamageEvents(r, target, out.EndureRequired, out.DeathCheckRequired, out.Died)
}

// HandleAttack разрешает заявленную атаку. Итоги бросков обеих сторон
// приходят в команде (кости кидаются за столом): сервер сравнивает
// суммы, определяет тир крита по марже и применяет урон.
func HandleAttack(ctx handlers.Context, p api.AttackPayload) (handlers.Result, error) {
	var r handlers.Result

	attacker, err := handlers.RequireControl(ctx, p.AttackerID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequireTurn(ctx, attacker); err != nil {
		return r, err
	}
	target, err := handlers.RequireEntity(ctx, p.TargetID)
	if err != nil {
		return r, err
	}
	weapon, ok := ctx.Rules.Weapon(p.Weapon)
	if !ok {
		return r, handlers.Rejectf("unknown weapon category %q", p.Weapon)
	}
	if reason := systems.ValidateAttack(ctx.State, attacker, target, weapon); reason != "" {
		return r, handlers.Reject(reason)
	}

	// Ничья уходит защитнику: атака попадает только при строгом превышении
	won := p.AttackerTotal > p.DefenderTotal
	margin := p.AttackerTotal - p.DefenderTotal

	res, reason := systems.ResolveAttack(attacker, target, p.Weapon, weapon, margin, won, ctx.Rules)
	if reason != "" {
		return r, handlers.Reject(reason)
	}

	r.Broadcast(api.EvtAttackResolved, handlers.ToAttackOutcomeView(&res.Outcome))
	r.EntityUpdated(attacker)
	r.EntityUpdated(target)
	emitDamageFallout(&r, target, res.Damage)

	// Трата Energy на заявку могла обнулить ресурс атакующего
	handlers.HandleDamageEvents(&r, attacker, attacker.EndurePending, false, false)

	// Попадание по сущности со взведенным триггером открывает окно реакции
	if res.Outcome.Hit && target.Alive && target.ReadiedTrigger != "" {
		ctx.State.Phase = domain.PhaseReaction
		r.Broadcast(api.EvtReactionWindow, api.ReactionWindowView{
			EntityID: target.ID,
			Trigger:  target.ReadiedTrigger,
		})
	}

	handlers.EnsureCurrentCanAct(ctx, &r)
	return r, nil
}
