package actions

import (
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/systems"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// HandleEndureRoll разрешает висящий Endure-бросок.
// Провал роняет сущность без сознания (но никогда сразу в смерть).
func HandleEndureRoll(ctx handlers.Context, p api.CheckRollPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if !e.EndurePending {
		return r, handlers.Reject("entity has no pending endure roll")
	}

	success := systems.ResolveEndure(e, p.Roll, ctx.Rules)
	r.EntityUpdated(e)
	if !success {
		r.Broadcast(api.EvtEntityUnconscious, api.VitalityView{EntityID: e.ID, Roll: p.Roll})
	}

	// Потеря сознания посреди собственного хода отдает ход дальше
	handlers.EnsureCurrentCanAct(ctx, &r)
	return r, nil
}

// HandleDeathCheck разрешает Feat of Defiance лежащей без сознания
// сущности. Провал - смерть, успех - сущность остается без сознания.
func HandleDeathCheck(ctx handlers.Context, p api.CheckRollPayload) (handlers.Result, error) {
	var r handlers.Result

	e, err := handlers.RequireControl(ctx, p.EntityID)
	if err != nil {
		return r, err
	}
	if !e.DeathCheckPending {
		return r, handlers.Reject("entity has no pending death check")
	}

	success := systems.ResolveDeathCheck(e, p.Roll, ctx.Rules)
	r.EntityUpdated(e)
	if !success {
		// Мертвые остаются в трекере (оркестратор их пропускает)
		// и на сетке (труп не блокирует клетку).
		r.Broadcast(api.EvtEntityDied, api.VitalityView{EntityID: e.ID, Roll: p.Roll})
	}

	handlers.EnsureCurrentCanAct(ctx, &r)
	return r, nil
}
