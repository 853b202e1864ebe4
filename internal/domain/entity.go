package domain

// --- РЕСУРСЫ ---

// Resource пара текущее/максимум. Инвариант: 0 <= Current <= Max.
type Resource struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// CanSpend проверяет, хватает ли ресурса.
func (r Resource) CanSpend(cost int) bool {
	return r.Current >= cost
}

// Spend тратит ресурс. Возвращает false, если не хватило (без изменений).
func (r *Resource) Spend(cost int) bool {
	if cost < 0 || r.Current < cost {
		return false
	}
	r.Current -= cost
	return true
}

// Restore восстанавливает ресурс с клампом к максимуму.
func (r *Resource) Restore(amount int) {
	if amount < 0 {
		return
	}
	r.Current += amount
	if r.Current > r.Max {
		r.Current = r.Max
	}
}

// Set жестко выставляет текущее значение с клампом в [0, Max].
func (r *Resource) Set(value int) {
	if value < 0 {
		value = 0
	}
	if value > r.Max {
		value = r.Max
	}
	r.Current = value
}

// --- КАНАЛИЗАЦИЯ ---

// ChannelingState отслеживает многоходовое накопление ресурсов
// в заклинание. Независимая временная шкала на сущность.
type ChannelingState struct {
	SpellName  string `json:"spellName"`
	DamageType string `json:"damageType"`
	Intensity  int    `json:"intensity"`

	// TotalCost - целевая сумма отдельно для Energy и для AP
	// (выводится из интенсивности по таблице правил).
	TotalCost int `json:"totalCost"`

	// Оба счетчика монотонно неубывающие, пока канал активен.
	EnergyChanneled int `json:"energyChanneled"`
	APChanneled     int `json:"apChanneled"`
}

// Progress возвращает min(energy, ap)/totalCost, клампнутый в [0, 1].
func (c *ChannelingState) Progress() float64 {
	if c.TotalCost <= 0 {
		return 0
	}
	least := c.EnergyChanneled
	if c.APChanneled < least {
		least = c.APChanneled
	}
	p := float64(least) / float64(c.TotalCost)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// Invested возвращает суммарное вложение (для расчета отката).
func (c *ChannelingState) Invested() int {
	return c.EnergyChanneled + c.APChanneled
}

// --- СУЩНОСТЬ ---

// Entity - запись одного комбатанта: ресурсы, навыки, раны, состояние.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Faction string `json:"faction"` // ally | enemy | neutral
	Tier    string `json:"tier"`    // minion | full | lieutenant | hero

	// Controller - ID игрока, управляющего сущностью. Пусто = ГМ.
	Controller string `json:"controller,omitempty"`

	AP     Resource `json:"ap"`
	Energy Resource `json:"energy"`

	// Physical определяет подвижность (гексов за AP).
	Physical int `json:"physical"`

	// Skills: код навыка -> целочисленный модификатор.
	Skills map[string]int `json:"skills,omitempty"`

	Immunities  map[string]bool `json:"immunities,omitempty"`
	Resistances map[string]bool `json:"resistances,omitempty"`
	Weaknesses  map[string]bool `json:"weaknesses,omitempty"`

	// Wounds: тип урона -> счетчик. Только растет (кроме явного
	// переопределения ГМом) и переживает конец боя.
	Wounds map[string]int `json:"wounds,omitempty"`

	Unconscious bool `json:"unconscious"`
	Alive       bool `json:"alive"`

	Channeling *ChannelingState `json:"channeling,omitempty"`

	// ReadiedTrigger - условие отложенного действия (READY_ACTION).
	ReadiedTrigger string `json:"readiedTrigger,omitempty"`

	// Ожидающие проверки пайплайна жизнеспособности.
	// Пока EndurePending=true, дальнейший урон по сущности не применяется.
	EndurePending     bool `json:"endurePending,omitempty"`
	DeathCheckPending bool `json:"deathCheckPending,omitempty"`
}

// SkillMod возвращает модификатор навыка (0, если навык не известен).
func (e *Entity) SkillMod(skill string) int {
	if e.Skills == nil {
		return 0
	}
	return e.Skills[skill]
}

// DamageFactor возвращает множитель взаимодействия типа урона
// с защитами цели: иммунитет 0, резист 0.5, уязвимость 2, иначе 1.
// Иммунитет имеет приоритет.
func (e *Entity) DamageFactor(damageType string) float64 {
	if e.Immunities[damageType] {
		return 0
	}
	if e.Resistances[damageType] {
		return 0.5
	}
	if e.Weaknesses[damageType] {
		return 2
	}
	return 1
}

// AddWounds увеличивает счетчик ран типа. Миньоны ран не ведут.
func (e *Entity) AddWounds(damageType string, count int) {
	if count <= 0 || e.Tier == TierMinion {
		return
	}
	if e.Wounds == nil {
		e.Wounds = make(map[string]int)
	}
	e.Wounds[damageType] += count
}

// CanAct: жива, в сознании и не ждет проверок.
func (e *Entity) CanAct() bool {
	return e.Alive && !e.Unconscious && !e.EndurePending && !e.DeathCheckPending
}

// Clone возвращает глубокую копию сущности.
func (e *Entity) Clone() *Entity {
	cp := *e
	cp.Skills = cloneIntMap(e.Skills)
	cp.Wounds = cloneIntMap(e.Wounds)
	cp.Immunities = cloneBoolMap(e.Immunities)
	cp.Resistances = cloneBoolMap(e.Resistances)
	cp.Weaknesses = cloneBoolMap(e.Weaknesses)
	if e.Channeling != nil {
		ch := *e.Channeling
		cp.Channeling = &ch
	}
	return &cp
}

func cloneIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	cp := make(map[string]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	cp := make(map[string]bool, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
