package systems

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// MoveCost возвращает стоимость перемещения в AP:
// ceil(distance / hexesPerAP), где hexesPerAP = max(physical, floor).
// Пол гарантирует минимальную подвижность даже слабым сущностям.
func MoveCost(distance, physical, floor int) int {
	hexesPerAP := physical
	if hexesPerAP < floor {
		hexesPerAP = floor
	}
	return (distance + hexesPerAP - 1) / hexesPerAP
}

// ValidateMove проверяет перемещение сущности в клетку to.
// Возвращает стоимость и причину отказа ("" = разрешено).
func ValidateMove(state *domain.CombatSession, e *domain.Entity, to domain.Position, tbl *rules.Table) (int, string) {
	from, ok := state.Positions[e.ID]
	if !ok {
		return 0, "entity has no position on the grid"
	}

	if !state.InBounds(to) {
		return 0, "destination is out of bounds"
	}
	if state.Impassable(to) {
		return 0, "destination is impassable terrain"
	}
	if state.IsOccupied(to, e.ID) {
		return 0, "destination is occupied"
	}

	distance := from.DistanceTo(to)
	if distance == 0 {
		return 0, "entity is already there"
	}

	cost := MoveCost(distance, e.Physical, tbl.MovementFloor)
	if !e.AP.CanSpend(cost) {
		return cost, "not enough AP for this movement"
	}
	return cost, ""
}
