package actions

import (
	"github.com/google/uuid"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/dice"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/systems"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// Контесты. В отличие от DECLARE_ATTACK здесь кости кидает СЕРВЕР:
// бросок инициатора делается сразу, бросок ответчика - при ответе.
// Одновременно разрешается один контест; остальные ждут в очереди.

// enqueueContest ставит контест активным либо в хвост очереди.
// Активный атакующий контест замораживает сессию фазой resolution.
func enqueueContest(ctx handlers.Context, r *handlers.Result, c *domain.SkillContest) {
	state := ctx.State
	if state.ActiveContest == nil {
		state.ActiveContest = c
		if c.Kind == domain.ContestAttack {
			state.Phase = domain.PhaseResolution
		}
		r.Broadcast(api.EvtSkillContestResponseRequested, handlers.ToContestView(c))
		return
	}
	state.PendingContests = append(state.PendingContests, c)
}

// promoteNextContest достает следующий контест из очереди.
func promoteNextContest(ctx handlers.Context, r *handlers.Result) {
	state := ctx.State
	if len(state.PendingContests) == 0 {
		return
	}
	next := state.PendingContests[0]
	state.PendingContests = state.PendingContests[1:]
	state.ActiveContest = next
	if next.Kind == domain.ContestAttack {
		state.Phase = domain.PhaseResolution
	}
	r.Broadcast(api.EvtSkillContestResponseRequested, handlers.ToContestView(next))
}

// HandleSkillContest начинает проверку навыка.
// Пустой ResponderID - соло-проверка: разрешается немедленно против
// фиксированного тотала (или безусловно, если тотала нет).
func HandleSkillContest(ctx handlers.Context, p api.SkillContestPayload) (handlers.Result, error) {
	var r handlers.Result

	initiator, err := handlers.RequireControl(ctx, p.InitiatorID)
	if err != nil {
		return r, err
	}
	if !initiator.CanAct() {
		return r, handlers.Reject("entity cannot act right now")
	}

	roll, err := dice.MakeRoll(ctx.Rng, p.Skill, initiator.SkillMod(p.Skill), p.DiceCount, domain.KeepPolicy(p.Keep))
	if err != nil {
		return r, handlers.Reject(err.Error())
	}

	contest := &domain.SkillContest{
		ID:            uuid.NewString(),
		Kind:          domain.ContestSkill,
		InitiatorID:   initiator.ID,
		InitiatorRoll: roll,
		OpponentTotal: p.OpponentTotal,
	}

	if p.ResponderID == "" {
		// Соло: разрешаем на месте, в очередь не ставим
		contest.Resolved = true
		if p.OpponentTotal != nil {
			out := dice.Compare(roll.Total, *p.OpponentTotal)
			contest.IsTie = out.IsTie
			contest.Margin = out.Margin
			if out.InitiatorWon {
				contest.WinnerID = initiator.ID
			}
		} else {
			// Проверка без противника: фиксируем сам бросок
			contest.WinnerID = initiator.ID
			contest.Margin = roll.Total
		}
		r.Broadcast(api.EvtSkillContestInitiated, handlers.ToContestView(contest))
		r.Broadcast(api.EvtSkillContestResolved, handlers.ToContestView(contest))
		return r, nil
	}

	if _, err := handlers.RequireEntity(ctx, p.ResponderID); err != nil {
		return r, err
	}
	contest.ResponderID = p.ResponderID

	r.Broadcast(api.EvtSkillContestInitiated, handlers.ToContestView(contest))
	enqueueContest(ctx, &r, contest)
	return r, nil
}

// HandleAttackContest начинает атакующий контест: атака, в которой
// сервер кидает кости обеим сторонам. Ресурсы и дистанция проверяются
// при заявке, списываются при разрешении.
func HandleAttackContest(ctx handlers.Context, p api.AttackContestPayload) (handlers.Result, error) {
	var r handlers.Result

	attacker, err := handlers.RequireControl(ctx, p.InitiatorID)
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

	roll, err := dice.MakeRoll(ctx.Rng, p.Skill, attacker.SkillMod(p.Skill), p.DiceCount, domain.KeepPolicy(p.Keep))
	if err != nil {
		return r, handlers.Reject(err.Error())
	}

	contest := &domain.SkillContest{
		ID:            uuid.NewString(),
		Kind:          domain.ContestAttack,
		InitiatorID:   attacker.ID,
		ResponderID:   target.ID,
		InitiatorRoll: roll,
		Weapon:        p.Weapon,
	}

	r.Broadcast(api.EvtAttackContestInitiated, handlers.ToContestView(contest))
	enqueueContest(ctx, &r, contest)
	return r, nil
}

// HandleRespondContest закрывает активный контест броском ответчика.
func HandleRespondContest(ctx handlers.Context, p api.RespondContestPayload) (handlers.Result, error) {
	var r handlers.Result

	state := ctx.State
	c := state.ActiveContest
	if c == nil || c.ID != p.ContestID {
		return r, handlers.Reject("contest is not awaiting a response")
	}
	responder, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if responder.ID != c.ResponderID {
		return r, handlers.Reject("this entity is not the contest responder")
	}

	roll, err := dice.MakeRoll(ctx.Rng, p.Skill, responder.SkillMod(p.Skill), p.DiceCount, domain.KeepPolicy(p.Keep))
	if err != nil {
		return r, handlers.Reject(err.Error())
	}

	out := dice.Compare(c.InitiatorRoll.Total, roll.Total)
	c.ResponderRoll = &roll
	c.Resolved = true
	c.IsTie = out.IsTie
	c.Margin = out.Margin
	switch {
	case out.InitiatorWon:
		c.WinnerID = c.InitiatorID
	case out.ResponderWon:
		c.WinnerID = c.ResponderID
	}

	state.ActiveContest = nil
	if state.Phase == domain.PhaseResolution {
		state.Phase = domain.PhaseActive
	}

	if c.Kind == domain.ContestAttack {
		attacker := state.Entity(c.InitiatorID)
		target := state.Entity(c.ResponderID)
		weapon, _ := ctx.Rules.Weapon(c.Weapon)

		// Ничья уходит защитнику, маржа при промахе не важна.
		// Ресурсы атакующего перепроверяются при разрешении: между
		// заявкой и ответом их могли съесть откат канала или правка
		// ГМа. Несостоявшаяся оплата срывает атаку - промах без списания.
		res, fizzled := systems.ResolveAttack(attacker, target, c.Weapon, weapon,
			c.InitiatorRoll.Total-roll.Total, out.InitiatorWon, ctx.Rules)
		c.Attack = &res.Outcome

		r.Broadcast(api.EvtAttackContestResolved, handlers.ToContestView(c))
		r.EntityUpdated(attacker)
		r.EntityUpdated(target)
		if fizzled == "" {
			emitDamageFallout(&r, target, res.Damage)
			// Стоимость оружия могла обнулить Energy атакующего
			handlers.HandleDamageEvents(&r, attacker, attacker.EndurePending, false, false)
		}
	} else {
		r.Broadcast(api.EvtSkillContestResolved, handlers.ToContestView(c))
	}

	promoteNextContest(ctx, &r)
	handlers.EnsureCurrentCanAct(ctx, &r)
	return r, nil
}
