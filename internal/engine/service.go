package engine

import (
	"hash/fnv"
	"math/rand"
	"sync"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers/actions"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers/admin"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// Service - реестр живых боевых сессий. Создает сессию при первом
// обращении и запускает ее актор; сам реестр - единственное место
// с мьютексом во всем движке.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session

	rules    *rules.Table
	archive  handlers.WoundArchive
	seed     int64
	registry map[domain.ActionType]handlers.HandlerFunc
}

// NewService собирает реестр. Фиксированный сид дает воспроизводимые
// сессии (тесты, разбор спорных бросков за столом).
func NewService(tbl *rules.Table, archive handlers.WoundArchive, seed int64) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		rules:    tbl,
		archive:  archive,
		seed:     seed,
		registry: newRegistry(),
	}
}

// newRegistry связывает каждую команду протокола с хендлером.
// Распаковку и валидацию payload'а берет на себя WithPayload.
func newRegistry() map[domain.ActionType]handlers.HandlerFunc {
	return map[domain.ActionType]handlers.HandlerFunc{
		// Жизненный цикл боя
		domain.ActionStartCombat:      handlers.WithEmptyPayload(actions.HandleStartCombat),
		domain.ActionEndCombat:        handlers.WithEmptyPayload(actions.HandleEndCombat),
		domain.ActionSubmitInitiative: handlers.WithPayload(actions.HandleSubmitInitiative),

		// Ходы
		domain.ActionEndTurn:     handlers.WithPayload(actions.HandleEndTurn),
		domain.ActionDelayTurn:   handlers.WithPayload(actions.HandleDelayTurn),
		domain.ActionReadyAction: handlers.WithPayload(actions.HandleReadyAction),

		// Действия
		domain.ActionDeclareMovement: handlers.WithPayload(actions.HandleMovement),
		domain.ActionDeclareAttack:   handlers.WithPayload(actions.HandleAttack),
		domain.ActionDeclareAbility:  handlers.WithPayload(actions.HandleAbility),
		domain.ActionDeclareReaction: handlers.WithPayload(actions.HandleReaction),

		// Канализация заклинаний
		domain.ActionStartChanneling:    handlers.WithPayload(actions.HandleStartChanneling),
		domain.ActionContinueChanneling: handlers.WithPayload(actions.HandleContinueChanneling),
		domain.ActionReleaseSpell:       handlers.WithPayload(actions.HandleReleaseSpell),
		domain.ActionAbortChanneling:    handlers.WithPayload(actions.HandleAbortChanneling),

		// Жизнеспособность
		domain.ActionSubmitEndureRoll: handlers.WithPayload(actions.HandleEndureRoll),
		domain.ActionSubmitDeathCheck: handlers.WithPayload(actions.HandleDeathCheck),

		// Контесты
		domain.ActionInitiateSkillContest:  handlers.WithPayload(actions.HandleSkillContest),
		domain.ActionRespondSkillContest:   handlers.WithPayload(actions.HandleRespondContest),
		domain.ActionInitiateAttackContest: handlers.WithPayload(actions.HandleAttackContest),

		// Команды ГМа
		domain.ActionGMOverride:        handlers.WithPayload(admin.HandleOverride),
		domain.ActionGMMoveEntity:      handlers.WithPayload(admin.HandleMoveEntity),
		domain.ActionGMApplyDamage:     handlers.WithPayload(admin.HandleApplyDamage),
		domain.ActionGMModifyResources: handlers.WithPayload(admin.HandleModifyResources),
		domain.ActionGMAddEntity:       handlers.WithPayload(admin.HandleAddEntity),
		domain.ActionGMRemoveEntity:    handlers.WithPayload(admin.HandleRemoveEntity),
		domain.ActionUpdateGridConfig:  handlers.WithPayload(admin.HandleGridConfig),
		domain.ActionUpdateMapConfig:   handlers.WithPayload(admin.HandleMapConfig),

		// Синхронизация
		domain.ActionRequestState: handlers.WithEmptyPayload(actions.HandleRequestState),
	}
}

// Session возвращает сессию боя, создавая и запуская ее при первом
// обращении.
func (s *Service) Session(combatID, campaignID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[combatID]; ok {
		return sess
	}

	state := domain.NewCombatSession(combatID, campaignID)
	sess := newSession(state, s.rules, s.newRng(combatID), s.archive, s.registry)
	s.sessions[combatID] = sess

	go sess.Run()
	logger.Log.WithField("combat_id", combatID).Info("Combat session created")
	return sess
}

// Peek возвращает сессию без создания (nil, если нет).
func (s *Service) Peek(combatID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[combatID]
}

// SessionIDs - список живых сессий (для отладочных ручек).
func (s *Service) SessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown останавливает акторы всех сессий.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		sess.Stop()
		delete(s.sessions, id)
	}
	logger.Log.Info("All combat sessions stopped")
}

// newRng - отдельный генератор на сессию: общий сид сервиса
// смешивается с ID боя, чтобы сессии не делили поток случайности.
func (s *Service) newRng(combatID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(combatID))
	return rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))
}
