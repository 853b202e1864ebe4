package handlers

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// WoundArchive - внешнее хранилище ран, переживающих бой.
// Реализуется infrastructure/storage; может быть nil (персистентность выключена).
type WoundArchive interface {
	SaveAftermath(state *domain.CombatSession) error
	LoadWounds(entityID string) (map[string]int, error)
}

// Context передает хендлеру состояние сессии.
// Хендлер мутирует агрегат напрямую: актор сессии гарантирует
// единственного писателя и откат при нарушении инвариантов.
type Context struct {
	State  *domain.CombatSession
	Rules  *rules.Table
	Rng    *rand.Rand
	Client domain.ClientInfo

	Archive WoundArchive
}

// Result - события, которые нужно разослать после успешной мутации.
// Хендлер НЕ пишет в Hub напрямую, он возвращает данные.
type Result struct {
	Events []domain.Event
}

// Broadcast добавляет событие для всех подписчиков (двигает версию).
func (r *Result) Broadcast(evtType string, payload interface{}) {
	r.Events = append(r.Events, domain.Event{Type: evtType, Payload: payload})
}

// Send добавляет unicast-событие отправителю (версию не двигает).
func (r *Result) Send(evtType string, payload interface{}) {
	r.Events = append(r.Events, domain.Event{Type: evtType, Payload: payload, ToSender: true})
}

// HandlerFunc - контракт для любой команды.
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// --- ОТКАЗЫ ---

// RejectError - ошибка валидации команды. Превращается в событие
// ACTION_REJECTED отправителю; состояние сессии не меняется.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return e.Reason }

// Reject создает отказ с человекочитаемой причиной.
func Reject(reason string) error {
	return &RejectError{Reason: reason}
}

func Rejectf(format string, args ...interface{}) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

// --- ОБЩИЕ ПРОВЕРКИ ---

// RequireEntity находит сущность или отказывает.
func RequireEntity(ctx Context, entityID string) (*domain.Entity, error) {
	e := ctx.State.Entity(entityID)
	if e == nil {
		return nil, Rejectf("entity %s not found", entityID)
	}
	return e, nil
}

// RequireControl: сущность существует и отправитель вправе за нее действовать.
func RequireControl(ctx Context, entityID string) (*domain.Entity, error) {
	e, err := RequireEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if !ctx.Client.Controls(e) {
		return nil, Rejectf("you do not control entity %s", entityID)
	}
	return e, nil
}

// RequireTurn: фаза active и ход именно этой сущности.
func RequireTurn(ctx Context, e *domain.Entity) error {
	if ctx.State.Phase != domain.PhaseActive {
		return Rejectf("command is not legal in phase %s", ctx.State.Phase)
	}
	if ctx.State.CurrentEntityID != e.ID {
		return Reject("it is not this entity's turn")
	}
	if !e.CanAct() {
		return Reject("entity cannot act right now")
	}
	return nil
}

// RequirePhase: текущая фаза входит в разрешенный список.
func RequirePhase(ctx Context, phases ...domain.Phase) error {
	for _, p := range phases {
		if ctx.State.Phase == p {
			return nil
		}
	}
	return Rejectf("command is not legal in phase %s", ctx.State.Phase)
}
