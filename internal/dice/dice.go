// Package dice реализует броски и разрешение контестов.
// Вся логика чиста относительно входа: при одинаковых бросках любой
// наблюдатель обязан получить идентичный результат.
package dice

import (
	"errors"
	"math/rand"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
)

// ErrNoDice - запрошен бросок без кубов.
var ErrNoDice = errors.New("at least one die must be rolled")

// ErrBadKeepPolicy - политика выбора не highest и не lowest.
var ErrBadKeepPolicy = errors.New(`keep policy must be "highest" or "lowest"`)

// Roll кидает count независимых d100 и выбирает один по политике.
// Генератор передается снаружи: у каждой сессии свой Rng, что дает
// воспроизводимость при фиксированном сиде.
func Roll(rng *rand.Rand, count int, keep domain.KeepPolicy) ([]int, int, error) {
	if count < 1 {
		return nil, 0, ErrNoDice
	}
	if keep != domain.KeepHighest && keep != domain.KeepLowest {
		return nil, 0, ErrBadKeepPolicy
	}

	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = rng.Intn(domain.DieMax) + domain.DieMin
	}

	return rolls, Select(rolls, keep), nil
}

// Select возвращает засчитанный бросок: max при keep-highest,
// min при keep-lowest.
func Select(rolls []int, keep domain.KeepPolicy) int {
	if len(rolls) == 0 {
		return 0
	}
	selected := rolls[0]
	for _, r := range rolls[1:] {
		if keep == domain.KeepHighest && r > selected {
			selected = r
		}
		if keep == domain.KeepLowest && r < selected {
			selected = r
		}
	}
	return selected
}

// MakeRoll собирает полный ContestRoll: броски + модификатор навыка.
func MakeRoll(rng *rand.Rand, skill string, mod, count int, keep domain.KeepPolicy) (domain.ContestRoll, error) {
	rolls, selected, err := Roll(rng, count, keep)
	if err != nil {
		return domain.ContestRoll{}, err
	}
	return domain.ContestRoll{
		Skill:     skill,
		DiceCount: count,
		Keep:      keep,
		Rolls:     rolls,
		Selected:  selected,
		Modifier:  mod,
		Total:     selected + mod,
	}, nil
}

// Outcome - итог двухстороннего сравнения тоталов.
type Outcome struct {
	InitiatorWon bool
	ResponderWon bool
	IsTie        bool
	Margin       int // |totalA - totalB|
}

// Compare разрешает контест: больший тотал выигрывает,
// равенство - ничья без победителя.
func Compare(initiatorTotal, responderTotal int) Outcome {
	margin := initiatorTotal - responderTotal
	if margin < 0 {
		margin = -margin
	}
	out := Outcome{Margin: margin}
	switch {
	case initiatorTotal > responderTotal:
		out.InitiatorWon = true
	case responderTotal > initiatorTotal:
		out.ResponderWon = true
	default:
		out.IsTie = true
	}
	return out
}
