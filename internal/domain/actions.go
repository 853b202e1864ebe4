package domain

import "strings"

// ActionType - внутренний числовой идентификатор команды.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionStartCombat
	ActionEndCombat
	ActionSubmitInitiative
	ActionEndTurn
	ActionDelayTurn
	ActionReadyAction
	ActionDeclareMovement
	ActionDeclareAttack
	ActionDeclareAbility
	ActionDeclareReaction
	ActionStartChanneling
	ActionContinueChanneling
	ActionReleaseSpell
	ActionAbortChanneling
	ActionSubmitEndureRoll
	ActionSubmitDeathCheck
	ActionGMOverride
	ActionGMMoveEntity
	ActionGMApplyDamage
	ActionGMModifyResources
	ActionGMAddEntity
	ActionGMRemoveEntity
	ActionUpdateMapConfig
	ActionUpdateGridConfig
	ActionInitiateSkillContest
	ActionRespondSkillContest
	ActionInitiateAttackContest
	ActionRequestState
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"START_COMBAT":            ActionStartCombat,
	"END_COMBAT":              ActionEndCombat,
	"SUBMIT_INITIATIVE_ROLL":  ActionSubmitInitiative,
	"END_TURN":                ActionEndTurn,
	"DELAY_TURN":              ActionDelayTurn,
	"READY_ACTION":            ActionReadyAction,
	"DECLARE_MOVEMENT":        ActionDeclareMovement,
	"DECLARE_ATTACK":          ActionDeclareAttack,
	"DECLARE_ABILITY":         ActionDeclareAbility,
	"DECLARE_REACTION":        ActionDeclareReaction,
	"START_CHANNELING":        ActionStartChanneling,
	"CONTINUE_CHANNELING":     ActionContinueChanneling,
	"RELEASE_SPELL":           ActionReleaseSpell,
	"ABORT_CHANNELING":        ActionAbortChanneling,
	"SUBMIT_ENDURE_ROLL":      ActionSubmitEndureRoll,
	"SUBMIT_DEATH_CHECK":      ActionSubmitDeathCheck,
	"GM_OVERRIDE":             ActionGMOverride,
	"GM_MOVE_ENTITY":          ActionGMMoveEntity,
	"GM_APPLY_DAMAGE":         ActionGMApplyDamage,
	"GM_MODIFY_RESOURCES":     ActionGMModifyResources,
	"GM_ADD_ENTITY":           ActionGMAddEntity,
	"GM_REMOVE_ENTITY":        ActionGMRemoveEntity,
	"UPDATE_MAP_CONFIG":       ActionUpdateMapConfig,
	"UPDATE_GRID_CONFIG":      ActionUpdateGridConfig,
	"INITIATE_SKILL_CONTEST":  ActionInitiateSkillContest,
	"RESPOND_SKILL_CONTEST":   ActionRespondSkillContest,
	"INITIATE_ATTACK_CONTEST": ActionInitiateAttackContest,
	"REQUEST_STATE":           ActionRequestState,
}

// Маппинг для логов Domain -> String
var actionCmdToString = func() map[ActionType]string {
	m := make(map[ActionType]string, len(actionStringToCmd))
	for s, a := range actionStringToCmd {
		m[a] = s
	}
	return m
}()

// ParseAction конвертирует строку из JSON в ActionType.
func ParseAction(s string) ActionType {
	// Нечувствительность к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf и логов).
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsGMOnly - команды, доступные только роли ГМа.
func (a ActionType) IsGMOnly() bool {
	switch a {
	case ActionStartCombat, ActionEndCombat,
		ActionGMOverride, ActionGMMoveEntity, ActionGMApplyDamage,
		ActionGMModifyResources, ActionGMAddEntity, ActionGMRemoveEntity,
		ActionUpdateMapConfig, ActionUpdateGridConfig:
		return true
	}
	return false
}
