package domain

// Фракции
const (
	FactionAlly    = "ally"
	FactionEnemy   = "enemy"
	FactionNeutral = "neutral"
)

// Тиры сущностей. Minion умирает от любого подтвержденного попадания
// и не ведет учет ран.
const (
	TierMinion     = "minion"
	TierFull       = "full"
	TierLieutenant = "lieutenant"
	TierHero       = "hero"
)

// Тиры критов (определяются маржой контеста, см. pkg/rules)
const (
	CritNormal  = "normal"
	CritWicked  = "wicked"
	CritVicious = "vicious"
	CritBrutal  = "brutal"
)

// Границы интенсивности канализации
const (
	ChannelingIntensityMin = 1
	ChannelingIntensityMax = 6
)

// Границы броска d100
const (
	DieMin = 1
	DieMax = 100
)
