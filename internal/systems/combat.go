package systems

import (
	"github.com/sirupsen/logrus"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// AttackResult - итог атаки вместе с последствиями для цели.
type AttackResult struct {
	Outcome domain.AttackOutcome
	Damage  DamageOutcome
}

// ValidateAttack проверяет ресурсы, цель и дистанцию.
// Возвращает причину отказа ("" = атака разрешена).
func ValidateAttack(state *domain.CombatSession, attacker, target *domain.Entity, weapon rules.WeaponProfile) string {
	if !attacker.AP.CanSpend(weapon.APCost) {
		return "not enough AP for this weapon"
	}
	if !attacker.Energy.CanSpend(weapon.EnergyCost) {
		return "not enough Energy for this weapon"
	}
	if reason, ok := CanReceiveDamage(target); !ok {
		return reason
	}

	aPos, aOK := state.Positions[attacker.ID]
	tPos, tOK := state.Positions[target.ID]
	if !aOK || !tOK {
		return "attacker or target has no position on the grid"
	}
	dist := aPos.DistanceTo(tPos)
	if dist < weapon.MinRange || dist > weapon.MaxRange {
		return "target is out of weapon range"
	}
	return ""
}

// ResolveAttack списывает стоимость оружия и применяет исход контеста.
// margin и won - чистый вход из Dice/Contest Engine: тир крита обязан
// быть воспроизводим любым наблюдателем по тем же броскам.
//
// Порядок множителей: взаимодействие типа урона (иммунитет 0, резист 0.5,
// уязвимость 2) ПЕРЕД множителем тира (wicked x1, vicious x1.5, brutal x2).
//
// Непустой reason - атака сорвалась: между заявкой и разрешением ресурсы
// атакующего съели откат канала или правка ГМа. Состояние не трогается.
func ResolveAttack(attacker, target *domain.Entity, weaponName string, weapon rules.WeaponProfile, margin int, won bool, tbl *rules.Table) (AttackResult, string) {
	attackLogger := logger.Log.WithFields(logrus.Fields{
		"component":   "combat_system",
		"attacker_id": attacker.ID,
		"target_id":   target.ID,
		"weapon":      weaponName,
		"margin":      margin,
	})

	res := AttackResult{
		Outcome: domain.AttackOutcome{
			AttackerID: attacker.ID,
			TargetID:   target.ID,
			Weapon:     weaponName,
			DamageType: weapon.DamageType,
		},
	}

	// Стоимость оружия платится за заявку, не за попадание.
	// Перепроверка обязательна: ValidateAttack мог пройти в другой команде.
	if !attacker.AP.CanSpend(weapon.APCost) || !attacker.Energy.CanSpend(weapon.EnergyCost) {
		attackLogger.Warn("Attack fizzled: weapon cost is no longer payable")
		return res, "attacker can no longer pay the weapon cost"
	}
	attacker.AP.Spend(weapon.APCost)
	attacker.Energy.Spend(weapon.EnergyCost)
	CheckEnergyDepleted(attacker)

	// Проигранный или ничейный контест - промах
	if !won {
		attackLogger.Info("Attack missed")
		return res, ""
	}

	tier, critMult := tbl.TierForMargin(margin)
	typeFactor := target.DamageFactor(weapon.DamageType)
	finalDamage := rules.ScaleDamage(weapon.BaseDamage, typeFactor*critMult)

	res.Outcome.Hit = true
	res.Outcome.CritTier = tier
	res.Outcome.FinalDamage = finalDamage

	res.Damage = ApplyDamage(target, finalDamage, weapon.DamageType, tbl)
	res.Outcome.WoundsDealt = res.Damage.WoundsAdded
	res.Outcome.TargetDied = res.Damage.Died

	attackLogger.WithFields(logrus.Fields{
		"crit_tier":    tier,
		"type_factor":  typeFactor,
		"final_damage": finalDamage,
		"wounds_dealt": res.Damage.WoundsAdded,
		"target_died":  res.Damage.Died,
	}).Info("Attack resolved")

	return res, ""
}
