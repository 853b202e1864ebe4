package api

import "encoding/json"

// DTO-слой событий. Сервер никогда не отдает доменные структуры напрямую:
// каждый слепок собирается заново под конкретного наблюдателя.

// ResourceView пара текущее/максимум для AP и Energy.
type ResourceView struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// ChannelingView снимок канализации заклинания.
type ChannelingView struct {
	SpellName       string  `json:"spellName"`
	DamageType      string  `json:"damageType"`
	Intensity       int     `json:"intensity"`
	TotalCost       int     `json:"totalCost"`
	EnergyChanneled int     `json:"energyChanneled"`
	APChanneled     int     `json:"apChanneled"`
	Progress        float64 `json:"progress"`
}

// EntityView это DTO для боевой сущности.
type EntityView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Faction    string `json:"faction"`
	Tier       string `json:"tier"`
	Controller string `json:"controller,omitempty"`

	AP     ResourceView `json:"ap"`
	Energy ResourceView `json:"energy"`

	Physical int            `json:"physical"`
	Skills   map[string]int `json:"skills,omitempty"`

	Immunities  []string `json:"immunities,omitempty"`
	Resistances []string `json:"resistances,omitempty"`
	Weaknesses  []string `json:"weaknesses,omitempty"`

	Wounds map[string]int `json:"wounds,omitempty"`

	Unconscious bool `json:"unconscious"`
	Alive       bool `json:"alive"`

	Channeling *ChannelingView `json:"channeling,omitempty"`
	Readied    string          `json:"readied,omitempty"`

	// Ожидающие проверки (подсказка интерфейсу контроллера)
	EndurePending     bool `json:"endurePending,omitempty"`
	DeathCheckPending bool `json:"deathCheckPending,omitempty"`
}

// InitiativeView одна строка трекера инициативы.
type InitiativeView struct {
	EntityID   string `json:"entityId"`
	Roll       int    `json:"roll"`
	Tiebreaker int    `json:"tiebreaker"`
}

// RollView результат одного броска контеста.
type RollView struct {
	Skill     string `json:"skill"`
	DiceCount int    `json:"diceCount"`
	Keep      string `json:"keep"`
	Rolls     []int  `json:"rolls"`
	Selected  int    `json:"selected"`
	Modifier  int    `json:"modifier"`
	Total     int    `json:"total"`
}

// AttackOutcomeView встроенный итог атаки (для атакующих контестов
// и события ATTACK_RESOLVED).
type AttackOutcomeView struct {
	AttackerID  string `json:"attackerId"`
	TargetID    string `json:"targetId"`
	Weapon      string `json:"weapon"`
	Hit         bool   `json:"hit"`
	CritTier    string `json:"critTier,omitempty"`
	DamageType  string `json:"damageType"`
	FinalDamage int    `json:"finalDamage"`
	WoundsDealt int    `json:"woundsDealt"`
	TargetDied  bool   `json:"targetDied,omitempty"`
}

// ContestView снимок контеста (ожидающего или разрешенного).
type ContestView struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"` // "skill" | "attack"
	InitiatorID   string             `json:"initiatorId"`
	ResponderID   string             `json:"responderId,omitempty"`
	InitiatorRoll RollView           `json:"initiatorRoll"`
	ResponderRoll *RollView          `json:"responderRoll,omitempty"`
	Resolved      bool               `json:"resolved"`
	WinnerID      string             `json:"winnerId,omitempty"`
	IsTie         bool               `json:"isTie,omitempty"`
	Margin        int                `json:"margin"`
	Attack        *AttackOutcomeView `json:"attack,omitempty"`
}

// GridConfigView и MapConfigView - презентационные настройки,
// которыми сессия владеет только ради авторитетности.
type GridConfigView struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	HexSize int `json:"hexSize,omitempty"`
}

type MapConfigView struct {
	Name       string     `json:"name,omitempty"`
	Background string     `json:"background,omitempty"`
	Obstacles  []HexCoord `json:"obstacles,omitempty"`
}

// StateSyncView полный снимок сессии для STATE_SYNC.
// Единственный путь восстановления для переподключившегося клиента:
// он заменяет ВСЁ свое локальное состояние этим снимком.
type StateSyncView struct {
	CombatID        string              `json:"combatId"`
	CampaignID      string              `json:"campaignId,omitempty"`
	Phase           string              `json:"phase"`
	Round           int                 `json:"round"`
	TurnIndex       int                 `json:"turnIndex"`
	CurrentEntityID string              `json:"currentEntityId,omitempty"`
	Version         uint64              `json:"version"`
	Entities        []EntityView        `json:"entities"`
	Initiative      []InitiativeView    `json:"initiative"`
	Positions       map[string]HexCoord `json:"positions"`
	Grid            GridConfigView      `json:"grid"`
	Map             MapConfigView       `json:"map"`
	PendingContests []ContestView       `json:"pendingContests,omitempty"`
	ActiveContest   *ContestView        `json:"activeContest,omitempty"`

	// ControlledEntityIDs - список сущностей ПОЛУЧАТЕЛЯ снимка.
	ControlledEntityIDs []string `json:"controlledEntityIds"`
	IsGM                bool     `json:"isGm,omitempty"`
}

// --- Мелкие payload'ы событий ---

type RoundStartedView struct {
	Round int `json:"round"`
}

type TurnStartedView struct {
	Round     int    `json:"round"`
	TurnIndex int    `json:"turnIndex"`
	EntityID  string `json:"entityId"`
}

type TurnEndedView struct {
	EntityID    string `json:"entityId"`
	EnergyRegen int    `json:"energyRegen"`
}

type EntityLifecycleView struct {
	Action   string      `json:"action"` // added | removed | updated
	EntityID string      `json:"entityId"`
	Entity   *EntityView `json:"entity,omitempty"`
}

type PositionUpdatedView struct {
	EntityID string   `json:"entityId"`
	To       HexCoord `json:"to"`
}

type MovementExecutedView struct {
	EntityID    string   `json:"entityId"`
	From        HexCoord `json:"from"`
	To          HexCoord `json:"to"`
	Cost        int      `json:"cost"`
	RemainingAP int      `json:"remainingAp"`
}

type AbilityDeclaredView struct {
	EntityID   string          `json:"entityId"`
	Name       string          `json:"name"`
	APCost     int             `json:"apCost"`
	EnergyCost int             `json:"energyCost"`
	Effect     json.RawMessage `json:"effect,omitempty"`
}

type ReactionWindowView struct {
	EntityID string `json:"entityId"` // у кого сработал триггер
	Trigger  string `json:"trigger"`
}

type ChannelingEventView struct {
	EntityID string         `json:"entityId"`
	State    ChannelingView `json:"state"`
}

type ChannelingInterruptedView struct {
	EntityID string `json:"entityId"`
	Reason   string `json:"reason"`
	Blowback int    `json:"blowback"`
}

type ChannelingReleasedView struct {
	EntityID  string     `json:"entityId"`
	SpellName string     `json:"spellName"`
	TargetID  string     `json:"targetId,omitempty"`
	Area      []HexCoord `json:"area,omitempty"`
	Damage    int        `json:"damage"`
}

type CheckRequiredView struct {
	EntityID string `json:"entityId"`
}

type VitalityView struct {
	EntityID string `json:"entityId"`
	Roll     int    `json:"roll,omitempty"`
}

type RejectedView struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

type ErrorView struct {
	Message string `json:"message"`
}
