package dice

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
)

func TestRollValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, _, err := Roll(rng, 0, domain.KeepHighest)
	assert.ErrorIs(t, err, ErrNoDice)

	_, _, err = Roll(rng, 2, domain.KeepPolicy("median"))
	assert.ErrorIs(t, err, ErrBadKeepPolicy)
}

func TestRollBoundsAndCount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		rolls, selected, err := Roll(rng, 3, domain.KeepHighest)
		require.NoError(t, err)
		require.Len(t, rolls, 3)
		for _, r := range rolls {
			assert.GreaterOrEqual(t, r, 1)
			assert.LessOrEqual(t, r, 100)
		}
		assert.Equal(t, Select(rolls, domain.KeepHighest), selected)
	}
}

func TestRollDeterministicForSameSeed(t *testing.T) {
	a, _, err := Roll(rand.New(rand.NewSource(7)), 5, domain.KeepHighest)
	require.NoError(t, err)
	b, _, err := Roll(rand.New(rand.NewSource(7)), 5, domain.KeepHighest)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSelect(t *testing.T) {
	rolls := []int{42, 17, 93, 5}

	assert.Equal(t, 93, Select(rolls, domain.KeepHighest))
	assert.Equal(t, 5, Select(rolls, domain.KeepLowest))
	assert.Equal(t, 0, Select(nil, domain.KeepHighest))
}

func TestMakeRollAppliesModifier(t *testing.T) {
	roll, err := MakeRoll(rand.New(rand.NewSource(3)), "stealth", 15, 2, domain.KeepLowest)
	require.NoError(t, err)

	assert.Equal(t, "stealth", roll.Skill)
	assert.Equal(t, 2, roll.DiceCount)
	assert.Equal(t, domain.KeepLowest, roll.Keep)
	assert.Equal(t, 15, roll.Modifier)
	assert.Equal(t, roll.Selected+15, roll.Total)
	assert.Equal(t, Select(roll.Rolls, domain.KeepLowest), roll.Selected)
}

func TestCompare(t *testing.T) {
	win := Compare(70, 55)
	assert.True(t, win.InitiatorWon)
	assert.False(t, win.ResponderWon)
	assert.False(t, win.IsTie)
	assert.Equal(t, 15, win.Margin)

	lose := Compare(30, 62)
	assert.False(t, lose.InitiatorWon)
	assert.True(t, lose.ResponderWon)
	assert.Equal(t, 32, lose.Margin)

	tie := Compare(50, 50)
	assert.True(t, tie.IsTie)
	assert.False(t, tie.InitiatorWon)
	assert.False(t, tie.ResponderWon)
	assert.Equal(t, 0, tie.Margin)
}
