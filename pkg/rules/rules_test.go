package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	tbl := Defaults()

	light, ok := tbl.Weapon("light")
	require.True(t, ok)
	assert.Equal(t, 2, light.APCost)
	assert.Equal(t, 1, light.EnergyCost)
	assert.Equal(t, 7, light.BaseDamage)
	assert.Equal(t, "slash", light.DamageType)

	cost, ok := tbl.ChannelingCost(3)
	require.True(t, ok)
	assert.Equal(t, 7, cost)

	_, ok = tbl.ChannelingCost(7)
	assert.False(t, ok)

	assert.Equal(t, 10, tbl.WoundPerDamage)
	assert.Equal(t, 50, tbl.EndureTarget)
	assert.Equal(t, 60, tbl.DeathCheckTarget)
	assert.Equal(t, 3, tbl.MovementFloor)
}

func TestTierForMargin(t *testing.T) {
	tbl := Defaults()

	cases := []struct {
		margin int
		tier   string
		mult   float64
	}{
		{0, "normal", 1.0},
		{4, "normal", 1.0},
		{5, "wicked", 1.0},
		{14, "wicked", 1.0},
		{15, "vicious", 1.5},
		{24, "vicious", 1.5},
		{25, "brutal", 2.0},
		{99, "brutal", 2.0},
	}

	for _, tc := range cases {
		tier, mult := tbl.TierForMargin(tc.margin)
		assert.Equalf(t, tc.tier, tier, "margin %d", tc.margin)
		assert.Equalf(t, tc.mult, mult, "margin %d", tc.margin)
	}
}

func TestScaleDamage(t *testing.T) {
	assert.Equal(t, 7, ScaleDamage(7, 1.0))
	assert.Equal(t, 11, ScaleDamage(7, 1.5)) // 10.5 -> 11
	assert.Equal(t, 14, ScaleDamage(7, 2.0))
	assert.Equal(t, 4, ScaleDamage(7, 0.5)) // 3.5 -> 4
	assert.Equal(t, 0, ScaleDamage(7, 0))
}

func TestWoundsFor(t *testing.T) {
	tbl := Defaults()

	assert.Equal(t, 0, tbl.WoundsFor(0))
	assert.Equal(t, 0, tbl.WoundsFor(9))
	assert.Equal(t, 1, tbl.WoundsFor(10))
	assert.Equal(t, 1, tbl.WoundsFor(19))
	assert.Equal(t, 2, tbl.WoundsFor(25))
	assert.Equal(t, 0, tbl.WoundsFor(-5))
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	tbl, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), tbl)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := []byte("endureTarget: 40\nmovementFloor: 2\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 40, tbl.EndureTarget)
	assert.Equal(t, 2, tbl.MovementFloor)
	// Нетронутые секции остаются дефолтными
	assert.Equal(t, 60, tbl.DeathCheckTarget)
	assert.Len(t, tbl.Weapons, 4)
}

func TestLoadRejectsInvalidTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("woundPerDamage: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
