package handlers

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
)

// Оркестрация порядка ходов. Хендлеры команд зовут эти функции,
// чтобы фазовые переходы и события раунда/хода были одинаковыми
// для всех путей (конец хода, задержка, смерть текущего, GM-удаление).

// SortInitiative упорядочивает трекер: бросок по убыванию, при равных
// бросках - tiebreaker по убыванию, затем ID для полной детерминированности.
func SortInitiative(entries []domain.InitiativeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Roll != entries[j].Roll {
			return entries[i].Roll > entries[j].Roll
		}
		if entries[i].Tiebreaker != entries[j].Tiebreaker {
			return entries[i].Tiebreaker > entries[j].Tiebreaker
		}
		return entries[i].EntityID < entries[j].EntityID
	})
}

// InitiativeViews - снимок трекера для INITIATIVE_UPDATED.
func InitiativeViews(entries []domain.InitiativeEntry) []api.InitiativeView {
	views := make([]api.InitiativeView, len(entries))
	for i, e := range entries {
		views[i] = api.InitiativeView{EntityID: e.EntityID, Roll: e.Roll, Tiebreaker: e.Tiebreaker}
	}
	return views
}

// canTakeTurn: сущность способна получить ход.
func canTakeTurn(e *domain.Entity) bool {
	return e != nil && e.Alive && !e.Unconscious
}

// startTurn назначает ход сущности по индексу инициативы.
// AP - поресурсный бюджет хода, восстанавливается в начале хода целиком.
func startTurn(ctx Context, r *Result, idx int) {
	state := ctx.State
	e := state.Entities[state.Initiative[idx].EntityID]

	state.CurrentTurnIndex = idx
	state.CurrentEntityID = e.ID
	e.AP.Set(e.AP.Max)

	r.Broadcast(api.EvtTurnStarted, api.TurnStartedView{
		Round:     state.Round,
		TurnIndex: idx,
		EntityID:  e.ID,
	})
	r.EntityUpdated(e)
}

// BeginFirstRound переводит сессию initiative -> active:
// сортирует трекер и выдает первый ход первого раунда.
func BeginFirstRound(ctx Context, r *Result) {
	state := ctx.State

	SortInitiative(state.Initiative)
	state.Phase = domain.PhaseActive
	state.Round = 1

	r.Broadcast(api.EvtInitiativeUpdated, InitiativeViews(state.Initiative))
	r.Broadcast(api.EvtRoundStarted, api.RoundStartedView{Round: 1})

	for idx := range state.Initiative {
		if canTakeTurn(state.Entities[state.Initiative[idx].EntityID]) {
			startTurn(ctx, r, idx)
			return
		}
	}
	state.CurrentEntityID = ""
}

// AdvanceTurn передает ход следующей дееспособной сущности.
// Достижение конца списка инкрементирует раунд и эмитит ROUND_STARTED
// ПЕРЕД первым TURN_STARTED нового раунда.
func AdvanceTurn(ctx Context, r *Result) {
	state := ctx.State
	n := len(state.Initiative)
	if n == 0 {
		state.CurrentEntityID = ""
		return
	}

	idx := state.CurrentTurnIndex
	for step := 0; step < n; step++ {
		idx++
		if idx >= n {
			idx = 0
			state.Round++
			r.Broadcast(api.EvtRoundStarted, api.RoundStartedView{Round: state.Round})
		}
		if canTakeTurn(state.Entities[state.Initiative[idx].EntityID]) {
			startTurn(ctx, r, idx)
			return
		}
	}

	// Никого дееспособного не осталось
	state.CurrentEntityID = ""
	logger.Log.WithField("combat_id", state.ID).Warn("No entity can take a turn")
}

// AllInitiativeSubmitted: у каждой живой сущности ровно одна строка трекера.
func AllInitiativeSubmitted(state *domain.CombatSession) bool {
	for id, e := range state.Entities {
		if !e.Alive {
			continue
		}
		if state.InitiativeIndexOf(id) < 0 {
			return false
		}
	}
	return len(state.Initiative) > 0
}

// InsertInitiative вставляет строку, сохраняя порядок сортировки
// (для GM_ADD_ENTITY - немедменная вставка в текущий раунд).
func InsertInitiative(state *domain.CombatSession, entry domain.InitiativeEntry) {
	pos := len(state.Initiative)
	for i, existing := range state.Initiative {
		if entry.Roll > existing.Roll ||
			(entry.Roll == existing.Roll && entry.Tiebreaker > existing.Tiebreaker) {
			pos = i
			break
		}
	}
	state.Initiative = append(state.Initiative, domain.InitiativeEntry{})
	copy(state.Initiative[pos+1:], state.Initiative[pos:])
	state.Initiative[pos] = entry

	if pos <= state.CurrentTurnIndex && state.CurrentEntityID != "" {
		state.CurrentTurnIndex++
	}
}

// RemoveFromInitiative убирает сущность из трекера. Если убрали
// текущую - ход немедленно уходит следующему.
func RemoveFromInitiative(ctx Context, r *Result, entityID string) {
	state := ctx.State
	idx := state.InitiativeIndexOf(entityID)
	if idx < 0 {
		return
	}

	wasCurrent := state.CurrentEntityID == entityID
	state.Initiative = append(state.Initiative[:idx], state.Initiative[idx+1:]...)

	if idx < state.CurrentTurnIndex {
		state.CurrentTurnIndex--
	}
	if wasCurrent {
		// Индекс уже указывает на следующего (или за конец списка)
		state.CurrentTurnIndex--
		state.CurrentEntityID = ""
		if state.Phase == domain.PhaseActive {
			AdvanceTurn(ctx, r)
		}
	}
	r.Broadcast(api.EvtInitiativeUpdated, InitiativeViews(state.Initiative))
}

// EnsureCurrentCanAct передает ход дальше, если текущая сущность
// погибла или потеряла сознание посреди своего хода (откат канала,
// ответный контест, урон ГМа).
func EnsureCurrentCanAct(ctx Context, r *Result) {
	state := ctx.State
	if state.Phase != domain.PhaseActive || state.CurrentEntityID == "" {
		return
	}
	if !canTakeTurn(state.Entities[state.CurrentEntityID]) {
		AdvanceTurn(ctx, r)
	}
}

// ResumeTurnFlow чинит порядок ходов после GM-правок состава или фазы:
//   - в initiative, когда убрали (или добили) последнего несдавшего
//     бросок, бой стартует немедленно;
//   - в active без текущей сущности ход выдается по трекеру заново.
//
// Без этого сессия застревает: SUBMIT_INITIATIVE_ROLL повторно не
// принимается, а EnsureCurrentCanAct при пустом CurrentEntityID молчит.
func ResumeTurnFlow(ctx Context, r *Result) {
	state := ctx.State
	switch state.Phase {
	case domain.PhaseInitiative:
		if AllInitiativeSubmitted(state) {
			BeginFirstRound(ctx, r)
		}
	case domain.PhaseActive:
		if state.CurrentEntityID != "" {
			return
		}
		for idx := range state.Initiative {
			if canTakeTurn(state.Entities[state.Initiative[idx].EntityID]) {
				if state.Round == 0 {
					BeginFirstRound(ctx, r)
				} else {
					AdvanceTurn(ctx, r)
				}
				return
			}
		}
	}
}

// CompleteCombat завершает сессию: висящие контесты очищаются,
// сущности замораживаются, раны уходят в архив (они переживают бой).
func CompleteCombat(ctx Context, r *Result) {
	state := ctx.State

	state.Phase = domain.PhaseCompleted
	state.CurrentEntityID = ""
	state.PendingContests = nil
	state.ActiveContest = nil
	for _, e := range state.Entities {
		e.ReadiedTrigger = ""
		e.EndurePending = false
		e.DeathCheckPending = false
	}

	if ctx.Archive != nil {
		if err := ctx.Archive.SaveAftermath(state); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"combat_id": state.ID,
			}).WithError(err).Error("Failed to persist combat aftermath")
		}
	}

	r.Broadcast(api.EvtCombatEnded, nil)
}

// HandleDamageEvents переводит DamageOutcome-флаги в события протокола.
// Используется атаками, откатом канала, уроном ГМа и выпуском заклинаний.
func HandleDamageEvents(r *Result, target *domain.Entity, endureRequired, deathCheckRequired, died bool) {
	if endureRequired {
		r.Broadcast(api.EvtEndureRollRequired, api.CheckRequiredView{EntityID: target.ID})
	}
	if deathCheckRequired {
		r.Broadcast(api.EvtDeathCheckRequired, api.CheckRequiredView{EntityID: target.ID})
	}
	if died {
		r.Broadcast(api.EvtEntityDied, api.VitalityView{EntityID: target.ID})
	}
}
