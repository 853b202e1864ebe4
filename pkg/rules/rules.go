// Package rules содержит численное наполнение правил: таблицы оружия,
// стоимость канализации, пороги критов и ран. Точные числа - контент,
// а не код, поэтому таблица переопределяется YAML-файлом целиком или
// частично (см. Load).
package rules

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// WeaponProfile описывает категорию оружия.
type WeaponProfile struct {
	APCost     int    `yaml:"apCost"`
	EnergyCost int    `yaml:"energyCost"`
	BaseDamage int    `yaml:"baseDamage"`
	DamageType string `yaml:"damageType"`
	MinRange   int    `yaml:"minRange"`
	MaxRange   int    `yaml:"maxRange"`
}

// CritTier связывает минимальную маржу контеста с тиром крита.
type CritTier struct {
	Name       string  `yaml:"name"` // normal | wicked | vicious | brutal
	MinMargin  int     `yaml:"minMargin"`
	Multiplier float64 `yaml:"multiplier"`
}

// Table - полный набор правил, которыми оперирует движок.
type Table struct {
	Weapons map[string]WeaponProfile `yaml:"weapons"`

	// ChannelingCosts индексируется интенсивностью 1..6.
	// Значение - целевая сумма И для Energy, И для AP.
	ChannelingCosts map[int]int `yaml:"channelingCosts"`

	// CritTiers отсортированы по MinMargin по возрастанию при загрузке.
	// Маржа ниже минимального порога - обычное попадание (×1).
	CritTiers []CritTier `yaml:"critTiers"`

	// WoundPerDamage - сколько итогового урона дает одну рану
	// соответствующего типа (целочисленное деление).
	WoundPerDamage int `yaml:"woundPerDamage"`

	// Цели бросков пайплайна Endure/Death (d100 + модификатор >= цели).
	EndureTarget     int `yaml:"endureTarget"`
	DeathCheckTarget int `yaml:"deathCheckTarget"`

	// MovementFloor - минимальное число гексов за 1 AP
	// (пол подвижности: hexesPerAP = max(physical, MovementFloor)).
	MovementFloor int `yaml:"movementFloor"`
}

// Defaults возвращает таблицу по умолчанию. Числа подобраны под
// эталонные сценарии (см. тесты): легкое оружие AP 2 / Energy 1 / урон 7.
func Defaults() *Table {
	return &Table{
		Weapons: map[string]WeaponProfile{
			"light": {APCost: 2, EnergyCost: 1, BaseDamage: 7, DamageType: "slash", MinRange: 1, MaxRange: 1},
			"heavy": {APCost: 3, EnergyCost: 2, BaseDamage: 12, DamageType: "crush", MinRange: 1, MaxRange: 1},
			"bow":   {APCost: 2, EnergyCost: 1, BaseDamage: 6, DamageType: "pierce", MinRange: 2, MaxRange: 12},
			"torch": {APCost: 1, EnergyCost: 1, BaseDamage: 4, DamageType: "burn", MinRange: 1, MaxRange: 1},
		},
		ChannelingCosts: map[int]int{
			1: 2, 2: 4, 3: 7, 4: 11, 5: 16, 6: 22,
		},
		CritTiers: []CritTier{
			{Name: "wicked", MinMargin: 5, Multiplier: 1.0},
			{Name: "vicious", MinMargin: 15, Multiplier: 1.5},
			{Name: "brutal", MinMargin: 25, Multiplier: 2.0},
		},
		WoundPerDamage:   10,
		EndureTarget:     50,
		DeathCheckTarget: 60,
		MovementFloor:    3,
	}
}

// Load читает YAML поверх дефолтов. Отсутствующие секции остаются
// дефолтными, присутствующие - замещаются целиком.
func Load(path string) (*Table, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	sort.Slice(t.CritTiers, func(i, j int) bool {
		return t.CritTiers[i].MinMargin < t.CritTiers[j].MinMargin
	})
	return t, nil
}

func (t *Table) validate() error {
	if t.WoundPerDamage <= 0 {
		return fmt.Errorf("woundPerDamage must be positive, got %d", t.WoundPerDamage)
	}
	if t.MovementFloor < 1 {
		return fmt.Errorf("movementFloor must be at least 1, got %d", t.MovementFloor)
	}
	for name, w := range t.Weapons {
		if w.BaseDamage < 0 || w.APCost < 0 || w.EnergyCost < 0 {
			return fmt.Errorf("weapon %q has negative cost or damage", name)
		}
		if w.MinRange > w.MaxRange {
			return fmt.Errorf("weapon %q has minRange > maxRange", name)
		}
	}
	for intensity, cost := range t.ChannelingCosts {
		if intensity < 1 || intensity > 6 {
			return fmt.Errorf("channeling intensity %d out of range 1..6", intensity)
		}
		if cost <= 0 {
			return fmt.Errorf("channeling cost for intensity %d must be positive", intensity)
		}
	}
	return nil
}

// Weapon возвращает профиль оружия по имени категории.
func (t *Table) Weapon(name string) (WeaponProfile, bool) {
	w, ok := t.Weapons[name]
	return w, ok
}

// ChannelingCost возвращает целевую стоимость для интенсивности.
func (t *Table) ChannelingCost(intensity int) (int, bool) {
	c, ok := t.ChannelingCosts[intensity]
	return c, ok
}

// TierForMargin - чистая функция маржа -> тир крита.
// Возвращает имя тира и множитель урона. Маржа ниже первого порога
// дает обычное попадание с множителем 1.
func (t *Table) TierForMargin(margin int) (string, float64) {
	name, mult := "normal", 1.0
	for _, tier := range t.CritTiers {
		if margin >= tier.MinMargin {
			name, mult = tier.Name, tier.Multiplier
		}
	}
	return name, mult
}

// ScaleDamage применяет множитель к базовому урону с округлением
// до ближайшего целого.
func ScaleDamage(base int, factor float64) int {
	return int(math.Round(float64(base) * factor))
}

// WoundsFor переводит итоговый урон в число ран.
func (t *Table) WoundsFor(finalDamage int) int {
	if finalDamage <= 0 {
		return 0
	}
	return finalDamage / t.WoundPerDamage
}
