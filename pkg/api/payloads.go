package api

import "encoding/json"

// HexCoord координата клетки в осевой (axial) системе гексагональной сетки.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// --- Payloads команд ---

// InitiativeRollPayload: SUBMIT_INITIATIVE_ROLL
type InitiativeRollPayload struct {
	EntityID string `json:"entityId"`
	Roll     int    `json:"roll"`
}

// EndTurnPayload: END_TURN
// EnergyRegen - явный вход мутации конца хода (не пересчитывается сервером),
// движок лишь клампит его к energy.max.
type EndTurnPayload struct {
	EntityID    string `json:"entityId"`
	EnergyRegen int    `json:"energyRegen"`
}

// DelayTurnPayload: DELAY_TURN
type DelayTurnPayload struct {
	EntityID string `json:"entityId"`
}

// ReadyActionPayload: READY_ACTION
type ReadyActionPayload struct {
	EntityID string `json:"entityId"`
	Trigger  string `json:"trigger"`
}

// MovementPayload: DECLARE_MOVEMENT
type MovementPayload struct {
	EntityID string   `json:"entityId"`
	To       HexCoord `json:"to"`
}

// AttackPayload: DECLARE_ATTACK
// Клиент передает уже разрешенные броски (см. Dice/Contest Engine);
// тир крита обязан быть чистой функцией от тоталов и маржи.
type AttackPayload struct {
	AttackerID    string `json:"attackerId"`
	TargetID      string `json:"targetId"`
	Weapon        string `json:"weapon"`
	AttackerTotal int    `json:"attackerTotal"`
	DefenderTotal int    `json:"defenderTotal"`
}

// AbilityPayload: DECLARE_ABILITY и DECLARE_REACTION.
// Effect - свободный payload, применение которого отдано внешним правилам.
type AbilityPayload struct {
	EntityID   string          `json:"entityId"`
	Name       string          `json:"name"`
	APCost     int             `json:"apCost"`
	EnergyCost int             `json:"energyCost"`
	Effect     json.RawMessage `json:"effect,omitempty"`
}

// StartChannelingPayload: START_CHANNELING
type StartChannelingPayload struct {
	EntityID   string `json:"entityId"`
	SpellName  string `json:"spellName"`
	DamageType string `json:"damageType"`
	Intensity  int    `json:"intensity"`
	Energy     int    `json:"energy"`
	AP         int    `json:"ap"`
}

// ContinueChannelingPayload: CONTINUE_CHANNELING
type ContinueChannelingPayload struct {
	EntityID string `json:"entityId"`
	Energy   int    `json:"energy"`
	AP       int    `json:"ap"`
}

// ReleaseSpellPayload: RELEASE_SPELL
// Цель либо одна сущность, либо область.
type ReleaseSpellPayload struct {
	EntityID string     `json:"entityId"`
	TargetID string     `json:"targetId,omitempty"`
	Area     []HexCoord `json:"area,omitempty"`
}

// AbortChannelingPayload: ABORT_CHANNELING
type AbortChannelingPayload struct {
	EntityID string `json:"entityId"`
}

// CheckRollPayload: SUBMIT_ENDURE_ROLL и SUBMIT_DEATH_CHECK
type CheckRollPayload struct {
	EntityID string `json:"entityId"`
	Roll     int    `json:"roll"`
}

// --- GM payloads ---

// GMOverridePayload: GM_OVERRIDE - точечный патч произвольных полей сущности.
// nil-поля не трогаются.
type GMOverridePayload struct {
	EntityID      string         `json:"entityId,omitempty"`
	AP            *int           `json:"ap,omitempty"`
	APMax         *int           `json:"apMax,omitempty"`
	Energy        *int           `json:"energy,omitempty"`
	EnergyMax     *int           `json:"energyMax,omitempty"`
	Alive         *bool          `json:"alive,omitempty"`
	Unconscious   *bool          `json:"unconscious,omitempty"`
	Wounds        map[string]int `json:"wounds,omitempty"`
	Controller    *string        `json:"controller,omitempty"`
	ClearReadied  bool           `json:"clearReadied,omitempty"`
	Phase         string         `json:"phase,omitempty"` // патч фазы сессии (reaction-interrupt и т.п.)
}

// GMMovePayload: GM_MOVE_ENTITY - принудительный телепорт.
// ChargeAP=true дополнительно списывает обычную стоимость движения.
// IgnoreLegality=true отключает проверки геометрии (границы,
// препятствия, занятость клетки).
type GMMovePayload struct {
	EntityID       string   `json:"entityId"`
	To             HexCoord `json:"to"`
	ChargeAP       bool     `json:"chargeAp,omitempty"`
	IgnoreLegality bool     `json:"ignoreLegality,omitempty"`
}

// GMDamagePayload: GM_APPLY_DAMAGE.
// Отрицательный Amount лечит (без проверок Endure).
type GMDamagePayload struct {
	EntityID   string `json:"entityId"`
	Amount     int    `json:"amount"`
	DamageType string `json:"damageType,omitempty"`
}

// GMResourcesPayload: GM_MODIFY_RESOURCES
type GMResourcesPayload struct {
	EntityID  string `json:"entityId"`
	AP        *int   `json:"ap,omitempty"`
	APMax     *int   `json:"apMax,omitempty"`
	Energy    *int   `json:"energy,omitempty"`
	EnergyMax *int   `json:"energyMax,omitempty"`
}

// EntitySpec описывает новую сущность для GM_ADD_ENTITY.
type EntitySpec struct {
	ID          string         `json:"id,omitempty"` // пусто = сервер сгенерирует
	Name        string         `json:"name"`
	Faction     string         `json:"faction"`
	Tier        string         `json:"tier"`
	Controller  string         `json:"controller,omitempty"`
	APMax       int            `json:"apMax"`
	EnergyMax   int            `json:"energyMax"`
	Physical    int            `json:"physical"`
	Skills      map[string]int `json:"skills,omitempty"`
	Immunities  []string       `json:"immunities,omitempty"`
	Resistances []string       `json:"resistances,omitempty"`
	Weaknesses  []string       `json:"weaknesses,omitempty"`
}

// GMAddEntityPayload: GM_ADD_ENTITY с немедленной вставкой в инициативу.
type GMAddEntityPayload struct {
	Entity         EntitySpec `json:"entity"`
	Position       HexCoord   `json:"position"`
	InitiativeRoll int        `json:"initiativeRoll"`
}

// GMRemoveEntityPayload: GM_REMOVE_ENTITY
type GMRemoveEntityPayload struct {
	EntityID string `json:"entityId"`
}

// GridConfigPayload: UPDATE_GRID_CONFIG
type GridConfigPayload struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	HexSize int `json:"hexSize,omitempty"`
}

// MapConfigPayload: UPDATE_MAP_CONFIG
type MapConfigPayload struct {
	Name       string     `json:"name,omitempty"`
	Background string     `json:"background,omitempty"`
	Obstacles  []HexCoord `json:"obstacles,omitempty"`
}

// --- Contest payloads ---

// SkillContestPayload: INITIATE_SKILL_CONTEST.
// ResponderID пуст - это соло-проверка: она разрешается немедленно
// против OpponentTotal (или вообще без противника, если тот nil).
type SkillContestPayload struct {
	InitiatorID   string `json:"initiatorId"`
	Skill         string `json:"skill"`
	DiceCount     int    `json:"diceCount"`
	Keep          string `json:"keep"` // "highest" | "lowest"
	ResponderID   string `json:"responderId,omitempty"`
	OpponentTotal *int   `json:"opponentTotal,omitempty"`
}

// RespondContestPayload: RESPOND_SKILL_CONTEST
type RespondContestPayload struct {
	ContestID string `json:"contestId"`
	EntityID  string `json:"entityId"`
	Skill     string `json:"skill"`
	DiceCount int    `json:"diceCount"`
	Keep      string `json:"keep"`
}

// AttackContestPayload: INITIATE_ATTACK_CONTEST.
// В отличие от DECLARE_ATTACK броски делает сервер: контест встраивает
// итог атаки (попадание, тир, урон) в результат разрешения.
type AttackContestPayload struct {
	InitiatorID string `json:"initiatorId"`
	TargetID    string `json:"targetId"`
	Weapon      string `json:"weapon"`
	Skill       string `json:"skill"`
	DiceCount   int    `json:"diceCount"`
	Keep        string `json:"keep"`
}
