package systems

import (
	"github.com/sirupsen/logrus"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// DamageOutcome описывает все последствия одного применения урона.
type DamageOutcome struct {
	Healed      int
	Applied     int // итоговый списанный Energy (включая откат канала)
	WoundsAdded int

	EndureRequired     bool
	DeathCheckRequired bool
	Died               bool // мгновенная смерть миньона

	ChannelingInterrupted bool
	Blowback              int
}

// ApplyDamage применяет итоговый урон (уже после множителей типа и крита)
// к цели и проводит ее через пайплайн ран/потери сознания/смерти.
// Отрицательный amount лечит (без проверок Endure - путь ГМа).
//
// Вызывающий обязан заранее проверить CanReceiveDamage: пока у цели
// висит Endure, новый урон не применяется.
func ApplyDamage(target *domain.Entity, amount int, damageType string, tbl *rules.Table) DamageOutcome {
	out := DamageOutcome{}

	// --- Лечение ---
	if amount < 0 {
		heal := -amount
		before := target.Energy.Current
		target.Energy.Restore(heal)
		out.Healed = target.Energy.Current - before
		return out
	}
	if amount == 0 || !target.Alive {
		return out
	}

	// --- Миньон: одно подтвержденное попадание = смерть ---
	// Ран не ведем, проверок не запрашиваем.
	if target.Tier == domain.TierMinion {
		target.Alive = false
		target.Channeling = nil
		out.Died = true
		out.Applied = amount
		logger.Log.WithFields(logrus.Fields{
			"component": "vitality",
			"entity_id": target.ID,
		}).Info("Minion destroyed by confirmed hit")
		return out
	}

	total := amount

	// --- Прерывание канализации: откат ---
	// Единственное кросс-системное правило: любой непроизвольный урон
	// по каналящей сущности рвет канал и добавляет урон отката.
	if target.Channeling != nil {
		chType := target.Channeling.DamageType
		blowback := InterruptChanneling(target)
		out.ChannelingInterrupted = true
		out.Blowback = blowback
		total += blowback

		bbWounds := tbl.WoundsFor(blowback)
		target.AddWounds(chType, bbWounds)
		out.WoundsAdded += bbWounds
	}

	// --- Раны ---
	wounds := tbl.WoundsFor(amount)
	target.AddWounds(damageType, wounds)
	out.WoundsAdded += wounds

	// --- Списание Energy и переходы состояний ---
	wasConscious := !target.Unconscious
	hadEnergy := target.Energy.Current > 0

	target.Energy.Current -= total
	if target.Energy.Current < 0 {
		target.Energy.Current = 0
	}
	out.Applied = total

	if !wasConscious {
		// Урон по лежащему без сознания требует Feat of Defiance.
		target.DeathCheckPending = true
		out.DeathCheckRequired = true
	} else if hadEnergy && target.Energy.Current == 0 {
		target.EndurePending = true
		out.EndureRequired = true
	}

	return out
}

// CanReceiveDamage отвечает, можно ли сейчас применять урон к цели.
// Пока контроллер не сдал Endure-бросок, сущность неприкосновенна:
// событие ENDURE_ROLL_REQUIRED обязано разрешиться первым.
func CanReceiveDamage(target *domain.Entity) (string, bool) {
	if !target.Alive {
		return "target is already dead", false
	}
	if target.EndurePending {
		return "target has a pending endure roll", false
	}
	return "", true
}

// CheckEnergyDepleted вызывается после любой траты Energy (стоимость
// атаки, способности, вложение в канал). Если ресурс дошел до нуля
// у находящейся в сознании сущности, взводит Endure.
func CheckEnergyDepleted(e *domain.Entity) bool {
	if e.Alive && !e.Unconscious && !e.EndurePending && e.Energy.Current == 0 && e.Energy.Max > 0 {
		e.EndurePending = true
		return true
	}
	return false
}

// ResolveEndure разрешает Endure-бросок.
// Успех - сущность остается активной на нуле Energy,
// провал - Active -> Unconscious (но никогда сразу в Dead).
func ResolveEndure(e *domain.Entity, roll int, tbl *rules.Table) bool {
	e.EndurePending = false
	success := roll >= tbl.EndureTarget
	if !success {
		e.Unconscious = true
		// Потеря сознания рвет канал без отката: сущности уже нечего терять
		e.Channeling = nil
		e.ReadiedTrigger = ""
	}
	logger.Log.WithFields(logrus.Fields{
		"component": "vitality",
		"entity_id": e.ID,
		"roll":      roll,
		"target":    tbl.EndureTarget,
		"success":   success,
	}).Info("Endure roll resolved")
	return success
}

// ResolveDeathCheck разрешает Feat of Defiance.
// Провал - Unconscious -> Dead, успех - остается без сознания.
func ResolveDeathCheck(e *domain.Entity, roll int, tbl *rules.Table) bool {
	e.DeathCheckPending = false
	success := roll >= tbl.DeathCheckTarget
	if !success {
		e.Alive = false
	}
	logger.Log.WithFields(logrus.Fields{
		"component": "vitality",
		"entity_id": e.ID,
		"roll":      roll,
		"target":    tbl.DeathCheckTarget,
		"success":   success,
	}).Info("Death check resolved")
	return success
}
