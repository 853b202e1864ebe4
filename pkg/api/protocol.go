package api

import (
	"encoding/json"
)

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
// Идентичность отправителя (playerId, isGM, controlledEntityIds) задается
// при подключении внешним сервисом авторизации, а не в самой команде.
type ClientCommand struct {
	// Type название команды (DECLARE_ATTACK, END_TURN, ...).
	Type string `json:"type"`

	// Payload JSON-объект с данными команды. Структура зависит от Type.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Словарь команд. Строки являются частью протокола и не меняются.
const (
	CmdStartCombat           = "START_COMBAT"
	CmdEndCombat             = "END_COMBAT"
	CmdSubmitInitiativeRoll  = "SUBMIT_INITIATIVE_ROLL"
	CmdEndTurn               = "END_TURN"
	CmdDelayTurn             = "DELAY_TURN"
	CmdReadyAction           = "READY_ACTION"
	CmdDeclareMovement       = "DECLARE_MOVEMENT"
	CmdDeclareAttack         = "DECLARE_ATTACK"
	CmdDeclareAbility        = "DECLARE_ABILITY"
	CmdDeclareReaction       = "DECLARE_REACTION"
	CmdStartChanneling       = "START_CHANNELING"
	CmdContinueChanneling    = "CONTINUE_CHANNELING"
	CmdReleaseSpell          = "RELEASE_SPELL"
	CmdAbortChanneling       = "ABORT_CHANNELING"
	CmdSubmitEndureRoll      = "SUBMIT_ENDURE_ROLL"
	CmdSubmitDeathCheck      = "SUBMIT_DEATH_CHECK"
	CmdGMOverride            = "GM_OVERRIDE"
	CmdGMMoveEntity          = "GM_MOVE_ENTITY"
	CmdGMApplyDamage         = "GM_APPLY_DAMAGE"
	CmdGMModifyResources     = "GM_MODIFY_RESOURCES"
	CmdGMAddEntity           = "GM_ADD_ENTITY"
	CmdGMRemoveEntity        = "GM_REMOVE_ENTITY"
	CmdUpdateMapConfig       = "UPDATE_MAP_CONFIG"
	CmdUpdateGridConfig      = "UPDATE_GRID_CONFIG"
	CmdInitiateSkillContest  = "INITIATE_SKILL_CONTEST"
	CmdRespondSkillContest   = "RESPOND_SKILL_CONTEST"
	CmdInitiateAttackContest = "INITIATE_ATTACK_CONTEST"
	CmdRequestState          = "REQUEST_STATE"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerEvent это корневой объект для всех сообщений от сервера к клиенту.
// Каждое событие, меняющее состояние, несет новую версию сессии.
// Клиент, заметивший разрыв версий, обязан запросить REQUEST_STATE.
type ServerEvent struct {
	// Type тип события (ATTACK_RESOLVED, TURN_STARTED, ...).
	Type string `json:"type"`

	// Version версия сессии ПОСЛЕ применения события.
	// 0 для событий, не меняющих состояние (ACTION_REJECTED, ERROR).
	Version uint64 `json:"version,omitempty"`

	// Payload данные события. Структура зависит от Type.
	Payload interface{} `json:"payload,omitempty"`
}

// Словарь событий.
const (
	EvtStateSync                     = "STATE_SYNC"
	EvtCombatStarted                 = "COMBAT_STARTED"
	EvtCombatEnded                   = "COMBAT_ENDED"
	EvtRoundStarted                  = "ROUND_STARTED"
	EvtTurnStarted                   = "TURN_STARTED"
	EvtTurnEnded                     = "TURN_ENDED"
	EvtInitiativeUpdated             = "INITIATIVE_UPDATED"
	EvtEntityLifecycle               = "ENTITY_LIFECYCLE"
	EvtEntityPositionUpdated         = "ENTITY_POSITION_UPDATED"
	EvtGridConfigUpdated             = "GRID_CONFIG_UPDATED"
	EvtMapConfigUpdated              = "MAP_CONFIG_UPDATED"
	EvtMovementExecuted              = "MOVEMENT_EXECUTED"
	EvtAttackResolved                = "ATTACK_RESOLVED"
	EvtAbilityDeclared               = "ABILITY_DECLARED"
	EvtReactionDeclared              = "REACTION_DECLARED"
	EvtReactionWindow                = "REACTION_WINDOW_OPENED"
	EvtChannelingStarted             = "CHANNELING_STARTED"
	EvtChannelingContinued           = "CHANNELING_CONTINUED"
	EvtChannelingReleased            = "CHANNELING_RELEASED"
	EvtChannelingInterrupted         = "CHANNELING_INTERRUPTED"
	EvtEntityUnconscious             = "ENTITY_UNCONSCIOUS"
	EvtEntityDied                    = "ENTITY_DIED"
	EvtEndureRollRequired            = "ENDURE_ROLL_REQUIRED"
	EvtDeathCheckRequired            = "DEATH_CHECK_REQUIRED"
	EvtSkillContestInitiated         = "SKILL_CONTEST_INITIATED"
	EvtSkillContestResponseRequested = "SKILL_CONTEST_RESPONSE_REQUESTED"
	EvtSkillContestResolved          = "SKILL_CONTEST_RESOLVED"
	EvtAttackContestInitiated        = "ATTACK_CONTEST_INITIATED"
	EvtAttackContestResolved         = "ATTACK_CONTEST_RESOLVED"
	EvtActionRejected                = "ACTION_REJECTED"
	EvtError                         = "ERROR"
)

// Дискриминант для EvtEntityLifecycle.
const (
	LifecycleAdded   = "added"
	LifecycleRemoved = "removed"
	LifecycleUpdated = "updated"
)
