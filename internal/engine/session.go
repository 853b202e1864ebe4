package engine

import (
	"errors"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/network"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// Session - актор одной боевой сессии. Все мутации агрегата проходят
// через единственную горутину Run: никакой другой код состояние
// не трогает, поэтому в самом агрегате нет ни одного мьютекса.
type Session struct {
	State *domain.CombatSession
	Hub   *network.Broadcaster

	rules    *rules.Table
	rng      *rand.Rand
	archive  handlers.WoundArchive
	registry map[domain.ActionType]handlers.HandlerFunc

	// CommandChan - единственный вход для команд клиентов.
	CommandChan chan domain.InternalCommand

	done chan struct{}
}

func newSession(state *domain.CombatSession, tbl *rules.Table, rng *rand.Rand,
	archive handlers.WoundArchive, registry map[domain.ActionType]handlers.HandlerFunc) *Session {
	return &Session{
		State:       state,
		Hub:         network.NewBroadcaster(),
		rules:       tbl,
		rng:         rng,
		archive:     archive,
		registry:    registry,
		CommandChan: make(chan domain.InternalCommand, 64),
		done:        make(chan struct{}),
	}
}

// Run - главный цикл актора. Блокируется до Stop.
func (s *Session) Run() {
	sessionLogger := logger.Log.WithField("combat_id", s.State.ID)
	sessionLogger.Info("Combat session loop started")

	for {
		select {
		case cmd := <-s.CommandChan:
			s.dispatch(cmd)
		case <-s.done:
			sessionLogger.Info("Combat session loop stopped")
			return
		}
	}
}

// Stop останавливает цикл актора.
func (s *Session) Stop() {
	close(s.done)
}

// dispatch проводит одну команду через полный конвейер:
// гейты -> бэкап -> хендлер -> проверка инвариантов -> рассылка.
func (s *Session) dispatch(cmd domain.InternalCommand) {
	cmdLogger := logger.Log.WithFields(logrus.Fields{
		"combat_id": s.State.ID,
		"conn_id":   cmd.Client.ConnID,
		"player_id": cmd.Client.PlayerID,
		"action":    cmd.Action.String(),
	})

	handlerFn, ok := s.registry[cmd.Action]
	if !ok {
		cmdLogger.Warn("Unknown command")
		s.sendError(cmd.Client.ConnID, "unknown command type")
		return
	}

	// Роль-гейт: GM-команды только от ГМа
	if cmd.Action.IsGMOnly() && !cmd.Client.IsGM {
		s.reject(cmd, "command requires GM role")
		return
	}

	// Завершенная сессия read-only: доступен только снимок состояния
	if s.State.Phase == domain.PhaseCompleted && cmd.Action != domain.ActionRequestState {
		s.reject(cmd, "combat is completed")
		return
	}

	// Бэкап для отката: хендлер мутирует агрегат напрямую
	backup := s.State.Clone()

	ctx := handlers.Context{
		State:   s.State,
		Rules:   s.rules,
		Rng:     s.rng,
		Client:  cmd.Client,
		Archive: s.archive,
	}

	res, err := handlerFn(ctx, cmd.Payload)
	if err != nil {
		s.State = backup
		var rejectErr *handlers.RejectError
		if errors.As(err, &rejectErr) {
			cmdLogger.WithField("reason", rejectErr.Reason).Info("Command rejected")
			s.reject(cmd, rejectErr.Reason)
			return
		}
		cmdLogger.WithError(err).Warn("Command failed")
		s.sendError(cmd.Client.ConnID, err.Error())
		return
	}

	// Нарушенный инвариант - баг мутации: коммит отклоняется целиком
	if verr := s.State.Validate(); verr != nil {
		s.State = backup
		cmdLogger.WithError(verr).Error("Invariant violation, state rolled back")
		s.sendError(cmd.Client.ConnID, "internal error: state change was rolled back")
		return
	}

	for _, ev := range res.Events {
		if ev.ToSender {
			s.Hub.SendTo(cmd.Client.ConnID, api.ServerEvent{
				Type:    ev.Type,
				Version: s.State.Version,
				Payload: ev.Payload,
			})
			continue
		}
		// Каждое broadcast-событие двигает версию сессии
		s.State.Version++
		s.Hub.Broadcast(api.ServerEvent{
			Type:    ev.Type,
			Version: s.State.Version,
			Payload: ev.Payload,
		})
	}
}

// reject шлет отправителю ACTION_REJECTED (версию не двигает).
func (s *Session) reject(cmd domain.InternalCommand, reason string) {
	s.Hub.SendTo(cmd.Client.ConnID, api.ServerEvent{
		Type: api.EvtActionRejected,
		Payload: api.RejectedView{
			Command: cmd.Action.String(),
			Reason:  reason,
		},
	})
}

// sendError шлет отправителю протокольную ошибку.
func (s *Session) sendError(connID, message string) {
	s.Hub.SendTo(connID, api.ServerEvent{
		Type:    api.EvtError,
		Payload: api.ErrorView{Message: message},
	})
}
