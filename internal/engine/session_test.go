package engine

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// Тесты зовут dispatch напрямую, без горутины Run: актор однопоточный,
// и конвейер команды полностью синхронный.

var (
	gmClient = domain.ClientInfo{ConnID: "gm-conn", PlayerID: "gm", IsGM: true}
	p1Client = domain.ClientInfo{ConnID: "p1-conn", PlayerID: "p1"}
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	state := domain.NewCombatSession("test-combat", "camp-1")
	return newSession(state, rules.Defaults(), rand.New(rand.NewSource(7)), nil, newRegistry())
}

func send(t *testing.T, s *Session, client domain.ClientInfo, action domain.ActionType, payload interface{}) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	s.dispatch(domain.InternalCommand{Action: action, Client: client, Payload: raw})
}

func drain(ch chan api.ServerEvent) []api.ServerEvent {
	var events []api.ServerEvent
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func hasEvent(events []api.ServerEvent, typ string) bool {
	return findEvent(events, typ) != nil
}

func findEvent(events []api.ServerEvent, typ string) *api.ServerEvent {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func addFighter(t *testing.T, s *Session, id string, q, roll int) {
	t.Helper()
	send(t, s, gmClient, domain.ActionGMAddEntity, api.GMAddEntityPayload{
		Entity: api.EntitySpec{
			ID: id, Name: id, Faction: "party", Tier: domain.TierFull,
			APMax: 3, EnergyMax: 50, Physical: 3,
		},
		Position:       api.HexCoord{Q: q},
		InitiativeRoll: roll,
	})
}

func TestSessionCombatFlow(t *testing.T) {
	s := newTestSession(t)
	ch := s.Hub.Register(gmClient.ConnID)

	addFighter(t, s, "hero", 0, 0)
	addFighter(t, s, "ogre", 1, 0)
	if len(s.State.Entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(s.State.Entities))
	}

	send(t, s, gmClient, domain.ActionStartCombat, nil)
	if s.State.Phase != domain.PhaseInitiative {
		t.Fatalf("phase = %s, want initiative", s.State.Phase)
	}

	send(t, s, gmClient, domain.ActionSubmitInitiative, api.InitiativeRollPayload{EntityID: "hero", Roll: 18})
	if s.State.Phase != domain.PhaseInitiative {
		t.Fatal("combat must wait for every initiative roll")
	}
	send(t, s, gmClient, domain.ActionSubmitInitiative, api.InitiativeRollPayload{EntityID: "ogre", Roll: 5})

	if s.State.Phase != domain.PhaseActive {
		t.Fatalf("phase = %s, want active", s.State.Phase)
	}
	if s.State.CurrentEntityID != "hero" {
		t.Errorf("current = %s, want hero (roll 18)", s.State.CurrentEntityID)
	}
	if s.State.Round != 1 {
		t.Errorf("round = %d, want 1", s.State.Round)
	}
	if s.State.Version == 0 {
		t.Error("accepted mutations must advance the session version")
	}

	events := drain(ch)
	for _, typ := range []string{api.EvtCombatStarted, api.EvtInitiativeUpdated, api.EvtRoundStarted, api.EvtTurnStarted} {
		if !hasEvent(events, typ) {
			t.Errorf("missing broadcast %s", typ)
		}
	}

	// Версии broadcast-событий строго монотонны
	var last uint64
	for _, ev := range events {
		if ev.Version <= last {
			t.Fatalf("event %s version %d is not monotonic (prev %d)", ev.Type, ev.Version, last)
		}
		last = ev.Version
	}
}

func TestSessionRejectsGMCommandFromPlayer(t *testing.T) {
	s := newTestSession(t)
	ch := s.Hub.Register(p1Client.ConnID)

	send(t, s, p1Client, domain.ActionGMAddEntity, api.GMAddEntityPayload{
		Entity:   api.EntitySpec{ID: "x", Tier: domain.TierFull, APMax: 3, EnergyMax: 10},
		Position: api.HexCoord{},
	})

	if len(s.State.Entities) != 0 {
		t.Error("player must not be able to add entities")
	}
	events := drain(ch)
	if len(events) != 1 || events[0].Type != api.EvtActionRejected {
		t.Fatalf("events = %v, want single ACTION_REJECTED", events)
	}
	if events[0].Version != 0 {
		t.Error("rejection must not carry a session version")
	}
}

func TestSessionRejectionKeepsVersion(t *testing.T) {
	s := newTestSession(t)
	addFighter(t, s, "hero", 0, 0)
	addFighter(t, s, "ogre", 1, 0)
	send(t, s, gmClient, domain.ActionStartCombat, nil)
	send(t, s, gmClient, domain.ActionSubmitInitiative, api.InitiativeRollPayload{EntityID: "hero", Roll: 18})
	send(t, s, gmClient, domain.ActionSubmitInitiative, api.InitiativeRollPayload{EntityID: "ogre", Roll: 5})

	version := s.State.Version
	ch := s.Hub.Register(p1Client.ConnID)

	// p1 не контролирует героя
	send(t, s, p1Client, domain.ActionEndTurn, api.EndTurnPayload{EntityID: "hero"})

	if s.State.Version != version {
		t.Errorf("version moved %d -> %d on a rejected command", version, s.State.Version)
	}
	if s.State.CurrentEntityID != "hero" {
		t.Error("rejected END_TURN must not advance the turn")
	}
	events := drain(ch)
	if len(events) != 1 || events[0].Type != api.EvtActionRejected {
		t.Fatalf("events = %v, want single ACTION_REJECTED", events)
	}
}

func TestSessionRequestStateIsUnicast(t *testing.T) {
	s := newTestSession(t)
	addFighter(t, s, "hero", 0, 0)

	gmCh := s.Hub.Register(gmClient.ConnID)
	otherCh := s.Hub.Register("other-conn")
	drain(gmCh)
	drain(otherCh)

	send(t, s, gmClient, domain.ActionRequestState, nil)

	other := drain(otherCh)
	if len(other) != 0 {
		t.Errorf("STATE_SYNC must not be broadcast, other client got %v", other)
	}

	events := drain(gmCh)
	if len(events) != 1 || events[0].Type != api.EvtStateSync {
		t.Fatalf("events = %v, want single STATE_SYNC", events)
	}
	snap, ok := events[0].Payload.(api.StateSyncView)
	if !ok {
		t.Fatalf("payload type %T, want StateSyncView", events[0].Payload)
	}
	if snap.CombatID != "test-combat" || len(snap.Entities) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if events[0].Version != s.State.Version {
		t.Error("snapshot must carry the current session version")
	}
}

func TestSessionRollsBackInvariantViolation(t *testing.T) {
	s := newTestSession(t)
	addFighter(t, s, "hero", 0, 0)

	ch := s.Hub.Register(gmClient.ConnID)
	drain(ch)
	version := s.State.Version

	// GM_OVERRIDE пишет сырые значения; отрицательный AP ловит Validate
	bad := -5
	send(t, s, gmClient, domain.ActionGMOverride, api.GMOverridePayload{EntityID: "hero", AP: &bad})

	if got := s.State.Entities["hero"].AP.Current; got < 0 {
		t.Errorf("ap = %d, state must be rolled back", got)
	}
	if s.State.Version != version {
		t.Error("rolled back mutation must not advance the version")
	}
	events := drain(ch)
	if len(events) != 1 || events[0].Type != api.EvtError {
		t.Fatalf("events = %v, want single ERROR", events)
	}
}

func TestSessionCompletedIsReadOnly(t *testing.T) {
	s := newTestSession(t)
	addFighter(t, s, "hero", 0, 0)
	s.State.Phase = domain.PhaseCompleted

	ch := s.Hub.Register(gmClient.ConnID)
	send(t, s, gmClient, domain.ActionGMApplyDamage, api.GMDamagePayload{EntityID: "hero", Amount: 5})

	events := drain(ch)
	if len(events) != 1 || events[0].Type != api.EvtActionRejected {
		t.Fatalf("events = %v, want single ACTION_REJECTED", events)
	}

	// Снимок состояния остается доступен
	send(t, s, gmClient, domain.ActionRequestState, nil)
	events = drain(ch)
	if len(events) != 1 || events[0].Type != api.EvtStateSync {
		t.Fatalf("events = %v, want STATE_SYNC after completion", events)
	}
}

func TestSessionUnknownCommand(t *testing.T) {
	s := newTestSession(t)
	ch := s.Hub.Register(gmClient.ConnID)

	send(t, s, gmClient, domain.ActionUnknown, nil)

	events := drain(ch)
	if len(events) != 1 || events[0].Type != api.EvtError {
		t.Fatalf("events = %v, want single ERROR", events)
	}
}

// activeSession доводит сессию до фазы active: бойцы из rolls добавлены,
// инициатива сдана, ход у сущности с наибольшим броском.
func activeSession(t *testing.T, s *Session, rolls map[string]int) {
	t.Helper()
	q := 0
	for id := range rolls {
		addFighter(t, s, id, q, 0)
		q++
	}
	send(t, s, gmClient, domain.ActionStartCombat, nil)
	for id, roll := range rolls {
		send(t, s, gmClient, domain.ActionSubmitInitiative, api.InitiativeRollPayload{EntityID: id, Roll: roll})
	}
	if s.State.Phase != domain.PhaseActive {
		t.Fatalf("phase = %s, want active", s.State.Phase)
	}
}

func TestSessionDelayTurn(t *testing.T) {
	s := newTestSession(t)
	activeSession(t, s, map[string]int{"hero": 18, "ogre": 10, "imp": 5})
	if s.State.CurrentEntityID != "hero" {
		t.Fatalf("current = %s, want hero", s.State.CurrentEntityID)
	}

	send(t, s, gmClient, domain.ActionDelayTurn, api.DelayTurnPayload{EntityID: "hero"})

	if got := s.State.Initiative[2]; got.EntityID != "hero" || got.Roll != 18 {
		t.Errorf("delayed entry = %+v, want hero at the tail with its roll kept", got)
	}
	if s.State.CurrentEntityID != "ogre" || s.State.Round != 1 {
		t.Errorf("current = %s round = %d, want ogre in round 1", s.State.CurrentEntityID, s.State.Round)
	}

	// Задержка последней сущности раунда замыкает цикл на нее же
	send(t, s, gmClient, domain.ActionEndTurn, api.EndTurnPayload{EntityID: "ogre"})
	send(t, s, gmClient, domain.ActionEndTurn, api.EndTurnPayload{EntityID: "imp"})
	if s.State.CurrentEntityID != "hero" {
		t.Fatalf("current = %s, want hero at the tail", s.State.CurrentEntityID)
	}

	send(t, s, gmClient, domain.ActionDelayTurn, api.DelayTurnPayload{EntityID: "hero"})

	if s.State.CurrentEntityID != "hero" || s.State.Round != 1 {
		t.Errorf("current = %s round = %d, want hero again in round 1", s.State.CurrentEntityID, s.State.Round)
	}
}

func TestSessionReadiedTriggerOpensReactionWindow(t *testing.T) {
	s := newTestSession(t)
	activeSession(t, s, map[string]int{"hero": 18, "ogre": 5})
	ch := s.Hub.Register(gmClient.ConnID)

	send(t, s, gmClient, domain.ActionReadyAction, api.ReadyActionPayload{EntityID: "hero", Trigger: "counterattack"})
	send(t, s, gmClient, domain.ActionEndTurn, api.EndTurnPayload{EntityID: "hero"})
	drain(ch)

	send(t, s, gmClient, domain.ActionDeclareAttack, api.AttackPayload{
		AttackerID: "ogre", TargetID: "hero", Weapon: "light",
		AttackerTotal: 30, DefenderTotal: 10,
	})

	if s.State.Phase != domain.PhaseReaction {
		t.Fatalf("phase = %s, want reaction-interrupt after a hit on a readied target", s.State.Phase)
	}
	if !hasEvent(drain(ch), api.EvtReactionWindow) {
		t.Error("missing REACTION_WINDOW_OPENED broadcast")
	}

	// Обычные команды в окне реакции не проходят
	send(t, s, gmClient, domain.ActionEndTurn, api.EndTurnPayload{EntityID: "ogre"})
	if s.State.CurrentEntityID != "ogre" {
		t.Error("END_TURN inside the reaction window must be rejected")
	}
	drain(ch)

	send(t, s, gmClient, domain.ActionDeclareReaction, api.AbilityPayload{
		EntityID: "hero", Name: "counter", APCost: 1,
	})

	if s.State.Phase != domain.PhaseActive {
		t.Errorf("phase = %s, want active after the reaction", s.State.Phase)
	}
	if s.State.Entities["hero"].ReadiedTrigger != "" {
		t.Error("readied trigger must be one-shot")
	}
	if !hasEvent(drain(ch), api.EvtReactionDeclared) {
		t.Error("missing REACTION_DECLARED broadcast")
	}
}

func TestSessionContestQueue(t *testing.T) {
	s := newTestSession(t)
	activeSession(t, s, map[string]int{"hero": 18, "ogre": 5})

	send(t, s, gmClient, domain.ActionInitiateSkillContest, api.SkillContestPayload{
		InitiatorID: "hero", Skill: "might", DiceCount: 2, Keep: "highest", ResponderID: "ogre",
	})
	if s.State.ActiveContest == nil || s.State.ActiveContest.Kind != domain.ContestSkill {
		t.Fatalf("active contest = %+v, want a skill contest", s.State.ActiveContest)
	}
	if s.State.Phase != domain.PhaseActive {
		t.Error("a skill contest must not freeze the session")
	}
	skillID := s.State.ActiveContest.ID

	send(t, s, gmClient, domain.ActionInitiateAttackContest, api.AttackContestPayload{
		InitiatorID: "hero", TargetID: "ogre", Weapon: "light",
		Skill: "might", DiceCount: 2, Keep: "highest",
	})
	if len(s.State.PendingContests) != 1 {
		t.Fatalf("pending contests = %d, want the attack contest queued", len(s.State.PendingContests))
	}

	send(t, s, gmClient, domain.ActionRespondSkillContest, api.RespondContestPayload{
		ContestID: skillID, EntityID: "ogre", Skill: "might", DiceCount: 2, Keep: "highest",
	})

	// Следующий из очереди - атакующий: сессия замирает в resolution
	if s.State.ActiveContest == nil || s.State.ActiveContest.Kind != domain.ContestAttack {
		t.Fatalf("active contest = %+v, want the promoted attack contest", s.State.ActiveContest)
	}
	if s.State.Phase != domain.PhaseResolution {
		t.Fatalf("phase = %s, want resolution", s.State.Phase)
	}
	send(t, s, gmClient, domain.ActionEndTurn, api.EndTurnPayload{EntityID: "hero"})
	if s.State.CurrentEntityID != "hero" {
		t.Error("END_TURN during resolution must be rejected")
	}

	send(t, s, gmClient, domain.ActionRespondSkillContest, api.RespondContestPayload{
		ContestID: s.State.ActiveContest.ID, EntityID: "ogre", Skill: "might", DiceCount: 2, Keep: "highest",
	})

	if s.State.ActiveContest != nil || len(s.State.PendingContests) != 0 {
		t.Error("queue must be empty after the last response")
	}
	if s.State.Phase != domain.PhaseActive {
		t.Errorf("phase = %s, want active after resolution", s.State.Phase)
	}
	// Стоимость оружия списана при разрешении
	if got := s.State.Entities["hero"].AP.Current; got != 1 {
		t.Errorf("hero AP = %d, want 1 (light weapon costs 2)", got)
	}
}

func TestSessionAttackContestRevalidatesCost(t *testing.T) {
	s := newTestSession(t)
	activeSession(t, s, map[string]int{"hero": 18, "ogre": 5})
	ch := s.Hub.Register(gmClient.ConnID)

	send(t, s, gmClient, domain.ActionInitiateAttackContest, api.AttackContestPayload{
		InitiatorID: "hero", TargetID: "ogre", Weapon: "light",
		Skill: "might", DiceCount: 2, Keep: "highest",
	})
	contestID := s.State.ActiveContest.ID

	// Ресурсы атакующего истаяли между заявкой и ответом
	zero := 0
	send(t, s, gmClient, domain.ActionGMModifyResources, api.GMResourcesPayload{EntityID: "hero", AP: &zero})
	drain(ch)

	send(t, s, gmClient, domain.ActionRespondSkillContest, api.RespondContestPayload{
		ContestID: contestID, EntityID: "ogre", Skill: "might", DiceCount: 2, Keep: "highest",
	})

	if s.State.ActiveContest != nil || s.State.Phase != domain.PhaseActive {
		t.Fatalf("contest must resolve and release the session, phase = %s", s.State.Phase)
	}
	ev := findEvent(drain(ch), api.EvtAttackContestResolved)
	if ev == nil {
		t.Fatal("missing ATTACK_CONTEST_RESOLVED broadcast")
	}
	view, ok := ev.Payload.(*api.ContestView)
	if !ok || view.Attack == nil {
		t.Fatalf("payload = %+v, want a contest view with an attack outcome", ev.Payload)
	}
	if view.Attack.Hit {
		t.Error("attack with an unpayable weapon cost must fizzle")
	}
	ogre := s.State.Entities["ogre"]
	if ogre.Energy.Current != 50 || len(ogre.Wounds) != 0 {
		t.Error("fizzled attack must leave the target untouched")
	}
	if s.State.Entities["hero"].Energy.Current != 50 {
		t.Error("fizzled attack must not debit the attacker")
	}
}

func TestSessionRemoveLastNonSubmitterStartsCombat(t *testing.T) {
	s := newTestSession(t)
	addFighter(t, s, "hero", 0, 0)
	addFighter(t, s, "ogre", 1, 0)
	send(t, s, gmClient, domain.ActionStartCombat, nil)
	send(t, s, gmClient, domain.ActionSubmitInitiative, api.InitiativeRollPayload{EntityID: "hero", Roll: 18})

	// Единственный несдавший бросок покидает бой
	send(t, s, gmClient, domain.ActionGMRemoveEntity, api.GMRemoveEntityPayload{EntityID: "ogre"})

	if s.State.Phase != domain.PhaseActive {
		t.Fatalf("phase = %s, want active once every remaining roll is in", s.State.Phase)
	}
	if s.State.CurrentEntityID != "hero" || s.State.Round != 1 {
		t.Errorf("current = %s round = %d, want hero in round 1", s.State.CurrentEntityID, s.State.Round)
	}
}

func TestSessionForcedActivePhaseStartsRound(t *testing.T) {
	s := newTestSession(t)
	addFighter(t, s, "hero", 0, 0)
	addFighter(t, s, "ogre", 1, 0)
	send(t, s, gmClient, domain.ActionStartCombat, nil)
	send(t, s, gmClient, domain.ActionSubmitInitiative, api.InitiativeRollPayload{EntityID: "hero", Roll: 18})

	// ГМ силой выводит сессию из initiative
	send(t, s, gmClient, domain.ActionGMOverride, api.GMOverridePayload{Phase: "active"})

	if s.State.Phase != domain.PhaseActive {
		t.Fatalf("phase = %s, want active", s.State.Phase)
	}
	if s.State.CurrentEntityID == "" {
		t.Fatal("forced active phase must hand out a turn, not stall")
	}
	if s.State.CurrentEntityID != "hero" || s.State.Round != 1 {
		t.Errorf("current = %s round = %d, want hero in round 1", s.State.CurrentEntityID, s.State.Round)
	}

	// Явный откат в initiative не выталкивается обратно
	send(t, s, gmClient, domain.ActionGMOverride, api.GMOverridePayload{Phase: "initiative"})
	if s.State.Phase != domain.PhaseInitiative {
		t.Errorf("phase = %s, an explicit reset to initiative must stick", s.State.Phase)
	}
}

func TestSessionGMMoveIgnoresLegalityOnDemand(t *testing.T) {
	s := newTestSession(t)
	addFighter(t, s, "hero", 0, 0)
	addFighter(t, s, "ogre", 1, 0)
	send(t, s, gmClient, domain.ActionUpdateMapConfig, api.MapConfigPayload{
		Obstacles: []api.HexCoord{{Q: 2, R: 0}},
	})

	send(t, s, gmClient, domain.ActionGMMoveEntity, api.GMMovePayload{
		EntityID: "hero", To: api.HexCoord{Q: 2, R: 0},
	})
	if got := s.State.Positions["hero"]; got != (domain.Position{Q: 0, R: 0}) {
		t.Fatalf("teleport onto an obstacle must be rejected, hero at %+v", got)
	}

	send(t, s, gmClient, domain.ActionGMMoveEntity, api.GMMovePayload{
		EntityID: "hero", To: api.HexCoord{Q: 2, R: 0}, IgnoreLegality: true,
	})
	if got := s.State.Positions["hero"]; got != (domain.Position{Q: 2, R: 0}) {
		t.Errorf("hero at %+v, want the obstacle hex with IgnoreLegality", got)
	}

	// Флаг снимает и проверку занятости
	send(t, s, gmClient, domain.ActionGMMoveEntity, api.GMMovePayload{
		EntityID: "hero", To: api.HexCoord{Q: 1, R: 0}, IgnoreLegality: true,
	})
	if got := s.State.Positions["hero"]; got != (domain.Position{Q: 1, R: 0}) {
		t.Errorf("hero at %+v, want ogre's hex with IgnoreLegality", got)
	}
}

func TestSessionForcedUnconsciousAppliesBlowback(t *testing.T) {
	s := newTestSession(t)
	activeSession(t, s, map[string]int{"hero": 18, "ogre": 5})
	ch := s.Hub.Register(gmClient.ConnID)

	send(t, s, gmClient, domain.ActionStartChanneling, api.StartChannelingPayload{
		EntityID: "hero", SpellName: "bolt", DamageType: "burn",
		Intensity: 2, Energy: 3, AP: 1,
	})
	drain(ch)

	// Навязанный стан рвет канал с откатом: ceil(4 / 2) = 2
	uncon := true
	send(t, s, gmClient, domain.ActionGMOverride, api.GMOverridePayload{EntityID: "hero", Unconscious: &uncon})

	hero := s.State.Entities["hero"]
	if hero.Channeling != nil {
		t.Error("forced unconsciousness must break the channel")
	}
	if hero.Energy.Current != 45 {
		t.Errorf("hero energy = %d, want 45 (47 minus blowback 2)", hero.Energy.Current)
	}
	events := drain(ch)
	ev := findEvent(events, api.EvtChannelingInterrupted)
	if ev == nil {
		t.Fatal("missing CHANNELING_INTERRUPTED broadcast")
	}
	view, ok := ev.Payload.(api.ChannelingInterruptedView)
	if !ok || view.Blowback != 2 {
		t.Errorf("payload = %+v, want blowback 2", ev.Payload)
	}
	if !hasEvent(events, api.EvtEntityUnconscious) {
		t.Error("missing ENTITY_UNCONSCIOUS broadcast")
	}
}

func TestServiceSessionLifecycle(t *testing.T) {
	svc := NewService(rules.Defaults(), nil, 42)
	defer svc.Shutdown()

	if svc.Peek("c1") != nil {
		t.Fatal("peek must not create sessions")
	}

	first := svc.Session("c1", "camp")
	if first == nil || svc.Peek("c1") != first {
		t.Fatal("session must be created and registered")
	}
	if svc.Session("c1", "camp") != first {
		t.Error("second lookup must return the same session")
	}

	// Разные бои получают независимые потоки случайности
	if svc.newRng("c1").Intn(1_000_000) == svc.newRng("c2").Intn(1_000_000) {
		t.Error("per-combat rng streams must differ")
	}

	svc.Session("c2", "camp")
	if got := len(svc.SessionIDs()); got != 2 {
		t.Errorf("session count = %d, want 2", got)
	}
}
