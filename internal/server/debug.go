package server

import (
	"encoding/json"
	"net/http"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine"
)

// DebugHandler предоставляет read-only доступ к состоянию сессий.
// Чтение идет мимо актора (без синхронизации с мутациями) - для
// отладки этого достаточно, для продакшена эти ручки закрываются.
type DebugHandler struct {
	Service *engine.Service
}

func NewDebugHandler(s *engine.Service) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты.
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/sessions", h.handleListSessions)
	mux.HandleFunc("/debug/session", h.handleDumpSession)
	mux.HandleFunc("/debug/initiative", h.handleInitiative)
}

// /debug/sessions - список живых сессий с числом подписчиков
func (h *DebugHandler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	type SessionSummary struct {
		CombatID    string `json:"combat_id"`
		Phase       string `json:"phase"`
		Round       int    `json:"round"`
		Entities    int    `json:"entities"`
		Subscribers int    `json:"subscribers"`
	}

	var summary []SessionSummary
	for _, id := range h.Service.SessionIDs() {
		sess := h.Service.Peek(id)
		if sess == nil {
			continue
		}
		summary = append(summary, SessionSummary{
			CombatID:    id,
			Phase:       string(sess.State.Phase),
			Round:       sess.State.Round,
			Entities:    len(sess.State.Entities),
			Subscribers: sess.Hub.SubscriberCount(),
		})
	}

	writeJSON(w, summary)
}

// /debug/session?combat=<id> - полный дамп агрегата сессии
func (h *DebugHandler) handleDumpSession(w http.ResponseWriter, r *http.Request) {
	sess := h.Service.Peek(r.URL.Query().Get("combat"))
	if sess == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	// Доменный агрегат как есть, включая tiebreaker'ы и контесты
	writeJSON(w, sess.State)
}

// /debug/initiative?combat=<id> - только трекер инициативы
func (h *DebugHandler) handleInitiative(w http.ResponseWriter, r *http.Request) {
	sess := h.Service.Peek(r.URL.Query().Get("combat"))
	if sess == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, sess.State.Initiative)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Пустые срезы отдаем как [], а не null
	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}
