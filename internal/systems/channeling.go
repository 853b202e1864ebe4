package systems

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// clampInvest ограничивает заявленное вложение доступным ресурсом.
func clampInvest(declared, available int) int {
	if declared > available {
		return available
	}
	if declared < 0 {
		return 0
	}
	return declared
}

// StartChanneling создает ChannelingState и списывает начальное вложение
// (клампнутое к доступности). Возвращает причину отказа или "".
func StartChanneling(e *domain.Entity, spell, damageType string, intensity, energy, ap int, tbl *rules.Table) string {
	if e.Channeling != nil {
		return "entity is already channeling"
	}
	totalCost, ok := tbl.ChannelingCost(intensity)
	if !ok {
		return "no channeling cost for this intensity"
	}

	energy = clampInvest(energy, e.Energy.Current)
	ap = clampInvest(ap, e.AP.Current)

	e.Energy.Spend(energy)
	e.AP.Spend(ap)

	e.Channeling = &domain.ChannelingState{
		SpellName:       spell,
		DamageType:      damageType,
		Intensity:       intensity,
		TotalCost:       totalCost,
		EnergyChanneled: energy,
		APChanneled:     ap,
	}
	return ""
}

// ContinueChanneling добавляет вложение на последующих ходах.
// Счетчики только растут, пока канал жив.
func ContinueChanneling(e *domain.Entity, energy, ap int) string {
	if e.Channeling == nil {
		return "entity is not channeling"
	}

	energy = clampInvest(energy, e.Energy.Current)
	ap = clampInvest(ap, e.AP.Current)
	if energy == 0 && ap == 0 {
		return "no resources available to channel"
	}

	e.Energy.Spend(energy)
	e.AP.Spend(ap)

	e.Channeling.EnergyChanneled += energy
	e.Channeling.APChanneled += ap
	return ""
}

// ReleaseSpell потребляет готовый канал. Возвращает урон заклинания.
// Требование: progress >= 1.
func ReleaseSpell(e *domain.Entity) (damage int, reason string) {
	ch := e.Channeling
	if ch == nil {
		return 0, "entity is not channeling"
	}
	if ch.Progress() < 1 {
		return 0, "channeling is not complete"
	}

	// Урон выпущенного заклинания равен целевой стоимости канала.
	damage = ch.TotalCost
	e.Channeling = nil
	return damage, ""
}

// AbortChanneling добровольно сбрасывает канал: без эффекта и без отката.
func AbortChanneling(e *domain.Entity) string {
	if e.Channeling == nil {
		return "entity is not channeling"
	}
	e.Channeling = nil
	return ""
}

// InterruptChanneling - принудительный разрыв (урон/стан по каналящему).
// Весь прогресс теряется; возвращает урон отката, пропорциональный
// собственному накопленному вложению: ceil(invested / 2).
func InterruptChanneling(e *domain.Entity) int {
	ch := e.Channeling
	if ch == nil {
		return 0
	}
	blowback := (ch.Invested() + 1) / 2
	e.Channeling = nil
	return blowback
}
