package domain

// Position - осевая (axial) координата гекса.
type Position struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// DistanceTo возвращает гексагональное расстояние между двумя клетками.
// Формула кубических координат: (|dq| + |dr| + |dq+dr|) / 2.
func (p Position) DistanceTo(other Position) int {
	dq := p.Q - other.Q
	dr := p.R - other.R
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
