package actions

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/systems"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// HandleMovement перемещает сущность по гексагональной сетке.
// Стоимость считается по аксиальной дистанции и физической
// характеристике; проверки легальности - в systems.ValidateMove.
func HandleMovement(ctx handlers.Context, p api.MovementPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if err := handlers.RequireTurn(ctx, e); err != nil {
		return r, err
	}

	to := handlers.FromHexCoord(p.To)
	cost, reason := systems.ValidateMove(ctx.State, e, to, ctx.Rules)
	if reason != "" {
		return r, handlers.Reject(reason)
	}

	from := ctx.State.Positions[e.ID]
	e.AP.Spend(cost)
	ctx.State.Positions[e.ID] = to

	r.Broadcast(api.EvtMovementExecuted, api.MovementExecutedView{
		EntityID:    e.ID,
		From:        handlers.ToHexCoord(from),
		To:          p.To,
		Cost:        cost,
		RemainingAP: e.AP.Current,
	})
	return r, nil
}
