package api

import "errors"

// Validator - интерфейс, который могут реализовать payload'ы команд.
// Обертка WithPayload вызывает Validate автоматически после Unmarshal.
type Validator interface {
	Validate() error
}

func (p InitiativeRollPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	if p.Roll < 1 || p.Roll > 100 {
		return errors.New("roll must be between 1 and 100")
	}
	return nil
}

func (p EndTurnPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	if p.EnergyRegen < 0 {
		return errors.New("energyRegen cannot be negative")
	}
	return nil
}

func (p MovementPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	return nil
}

func (p AttackPayload) Validate() error {
	if p.AttackerID == "" || p.TargetID == "" {
		return errors.New("attackerId and targetId are required")
	}
	if p.Weapon == "" {
		return errors.New("weapon is required")
	}
	return nil
}

func (p AbilityPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.APCost < 0 || p.EnergyCost < 0 {
		return errors.New("costs cannot be negative")
	}
	return nil
}

func (p StartChannelingPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	if p.SpellName == "" {
		return errors.New("spellName is required")
	}
	if p.Intensity < 1 || p.Intensity > 6 {
		return errors.New("intensity must be between 1 and 6")
	}
	if p.Energy < 0 || p.AP < 0 {
		return errors.New("initial investment cannot be negative")
	}
	return nil
}

func (p ContinueChannelingPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	if p.Energy < 0 || p.AP < 0 {
		return errors.New("investment cannot be negative")
	}
	if p.Energy == 0 && p.AP == 0 {
		return errors.New("investment cannot be empty")
	}
	return nil
}

func (p CheckRollPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	if p.Roll < 1 || p.Roll > 100 {
		return errors.New("roll must be between 1 and 100")
	}
	return nil
}

func (p GMDamagePayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	return nil
}

func (p GMAddEntityPayload) Validate() error {
	if p.Entity.Name == "" {
		return errors.New("entity name is required")
	}
	if p.Entity.APMax <= 0 || p.Entity.EnergyMax <= 0 {
		return errors.New("apMax and energyMax must be positive")
	}
	return nil
}

func (p GridConfigPayload) Validate() error {
	if p.Width < 0 || p.Height < 0 {
		return errors.New("grid dimensions cannot be negative")
	}
	return nil
}

func validateKeep(keep string) error {
	if keep != "highest" && keep != "lowest" {
		return errors.New(`keep must be "highest" or "lowest"`)
	}
	return nil
}

func (p SkillContestPayload) Validate() error {
	if p.InitiatorID == "" {
		return errors.New("initiatorId is required")
	}
	if p.DiceCount < 1 || p.DiceCount > 10 {
		return errors.New("diceCount must be between 1 and 10")
	}
	return validateKeep(p.Keep)
}

func (p RespondContestPayload) Validate() error {
	if p.ContestID == "" || p.EntityID == "" {
		return errors.New("contestId and entityId are required")
	}
	if p.DiceCount < 1 || p.DiceCount > 10 {
		return errors.New("diceCount must be between 1 and 10")
	}
	return validateKeep(p.Keep)
}

func (p AttackContestPayload) Validate() error {
	if p.InitiatorID == "" || p.TargetID == "" {
		return errors.New("initiatorId and targetId are required")
	}
	if p.Weapon == "" {
		return errors.New("weapon is required")
	}
	if p.DiceCount < 1 || p.DiceCount > 10 {
		return errors.New("diceCount must be between 1 and 10")
	}
	return validateKeep(p.Keep)
}
