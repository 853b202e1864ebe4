package actions

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/systems"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// HandleStartChanneling открывает канал заклинания и списывает
// начальное вложение. Заявленное вложение клампится к доступному.
func HandleStartChanneling(ctx handlers.Context, p api.StartChannelingPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequireTurn(ctx, e); err != nil {
		return r, err
	}

	if reason := systems.StartChanneling(e, p.SpellName, p.DamageType, p.Intensity, p.Energy, p.AP, ctx.Rules); reason != "" {
		return r, handlers.Reject(reason)
	}
	endure := systems.CheckEnergyDepleted(e)

	r.Broadcast(api.EvtChannelingStarted, api.ChannelingEventView{
		EntityID: e.ID,
		State:    *handlers.ToChannelingView(e.Channeling),
	})
	r.EntityUpdated(e)
	handlers.HandleDamageEvents(&r, e, endure, false, false)
	return r, nil
}

// HandleContinueChanneling добавляет вложение в открытый канал.
func HandleContinueChanneling(ctx handlers.Context, p api.ContinueChannelingPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequireTurn(ctx, e); err != nil {
		return r, err
	}

	if reason := systems.ContinueChanneling(e, p.Energy, p.AP); reason != "" {
		return r, handlers.Reject(reason)
	}
	endure := systems.CheckEnergyDepleted(e)

	r.Broadcast(api.EvtChannelingContinued, api.ChannelingEventView{
		EntityID: e.ID,
		State:    *handlers.ToChannelingView(e.Channeling),
	})
	r.EntityUpdated(e)
	handlers.HandleDamageEvents(&r, e, endure, false, false)
	return r, nil
}

// HandleReleaseSpell выпускает готовое заклинание по одной цели
// или по области. Урон равен целевой стоимости канала; тип урона -
// тип канала, так что иммунитеты и уязвимости работают как у оружия.
func HandleReleaseSpell(ctx handlers.Context, p api.ReleaseSpellPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequireTurn(ctx, e); err != nil {
		return r, err
	}
	if e.Channeling == nil {
		return r, handlers.Reject("entity is not channeling")
	}
	if p.TargetID == "" && len(p.Area) == 0 {
		return r, handlers.Reject("spell release needs a target or an area")
	}

	// Цели собираются ДО потребления канала: отказ не должен сжечь канал.
	var targets []*domain.Entity
	if p.TargetID != "" {
		target, err := handlers.RequireEntity(ctx, p.TargetID)
		if err != nil {
			return r, err
		}
		if reason, ok := systems.CanReceiveDamage(target); !ok {
			return r, handlers.Reject(reason)
		}
		targets = append(targets, target)
	} else {
		area := make(map[domain.Position]bool, len(p.Area))
		for _, h := range p.Area {
			area[handlers.FromHexCoord(h)] = true
		}
		for id, pos := range ctx.State.Positions {
			target := ctx.State.Entities[id]
			if target == nil || !area[pos] {
				continue
			}
			// Недоступные для урона цели область просто пропускает
			if _, ok := systems.CanReceiveDamage(target); !ok {
				continue
			}
			targets = append(targets, target)
		}
	}

	spellName := e.Channeling.SpellName
	damageType := e.Channeling.DamageType
	damage, reason := systems.ReleaseSpell(e)
	if reason != "" {
		return r, handlers.Reject(reason)
	}

	r.Broadcast(api.EvtChannelingReleased, api.ChannelingReleasedView{
		EntityID:  e.ID,
		SpellName: spellName,
		TargetID:  p.TargetID,
		Area:      p.Area,
		Damage:    damage,
	})
	r.EntityUpdated(e)

	for _, target := range targets {
		scaled := rules.ScaleDamage(damage, target.DamageFactor(damageType))
		out := systems.ApplyDamage(target, scaled, damageType, ctx.Rules)
		r.EntityUpdated(target)
		emitDamageFallout(&r, target, out)
	}

	handlers.EnsureCurrentCanAct(ctx, &r)
	return r, nil
}

// HandleAbortChanneling добровольно сбрасывает канал: вложение
// потеряно, но отката нет.
func HandleAbortChanneling(ctx handlers.Context, p api.AbortChannelingPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}

	if reason := systems.AbortChanneling(e); reason != "" {
		return r, handlers.Reject(reason)
	}

	r.Broadcast(api.EvtChannelingInterrupted, api.ChannelingInterruptedView{
		EntityID: e.ID,
		Reason:   "aborted",
		Blowback: 0,
	})
	r.EntityUpdated(e)
	return r, nil
}
