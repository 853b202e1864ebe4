package domain

// KeepPolicy определяет, какой из N бросков засчитывается.
type KeepPolicy string

const (
	KeepHighest KeepPolicy = "highest"
	KeepLowest  KeepPolicy = "lowest"
)

// ContestKind различает чистую проверку навыка и атакующий контест.
type ContestKind string

const (
	ContestSkill  ContestKind = "skill"
	ContestAttack ContestKind = "attack"
)

// ContestRoll - один бросок в контесте: N независимых d100,
// выбранный по политике бросок плюс модификатор навыка.
type ContestRoll struct {
	Skill     string     `json:"skill"`
	DiceCount int        `json:"diceCount"`
	Keep      KeepPolicy `json:"keep"`
	Rolls     []int      `json:"rolls"`
	Selected  int        `json:"selected"`
	Modifier  int        `json:"modifier"`
	Total     int        `json:"total"`
}

// AttackOutcome - встроенный итог атаки для атакующего контеста.
type AttackOutcome struct {
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

// SkillContest - бросок инициатора, ожидающий (опционального) ответа.
// Разрешается в победителя/проигравшего/ничью с маржой.
type SkillContest struct {
	ID   string      `json:"id"`
	Kind ContestKind `json:"kind"`

	InitiatorID string `json:"initiatorId"`
	// ResponderID пуст для соло-проверки.
	ResponderID string `json:"responderId,omitempty"`

	InitiatorRoll ContestRoll  `json:"initiatorRoll"`
	ResponderRoll *ContestRoll `json:"responderRoll,omitempty"`

	// OpponentTotal - фиксированный тотал противника для соло-проверки.
	OpponentTotal *int `json:"opponentTotal,omitempty"`

	// Weapon заполнено только для атакующих контестов.
	Weapon string `json:"weapon,omitempty"`

	Resolved bool   `json:"resolved"`
	WinnerID string `json:"winnerId,omitempty"`
	IsTie    bool   `json:"isTie,omitempty"`
	Margin   int    `json:"margin"`

	Attack *AttackOutcome `json:"attack,omitempty"`
}

// Clone возвращает глубокую копию контеста.
func (c *SkillContest) Clone() *SkillContest {
	cp := *c
	cp.InitiatorRoll.Rolls = append([]int(nil), c.InitiatorRoll.Rolls...)
	if c.ResponderRoll != nil {
		rr := *c.ResponderRoll
		rr.Rolls = append([]int(nil), c.ResponderRoll.Rolls...)
		cp.ResponderRoll = &rr
	}
	if c.OpponentTotal != nil {
		v := *c.OpponentTotal
		cp.OpponentTotal = &v
	}
	if c.Attack != nil {
		a := *c.Attack
		cp.Attack = &a
	}
	return &cp
}
