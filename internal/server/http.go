package server

import (
	"encoding/json"
	"net/http"
	_ "net/http/pprof" // Profiling

	"github.com/google/uuid"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/version"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
)

type Server struct {
	Service *engine.Service
	Port    string
}

func New(service *engine.Service, port string) *Server {
	return &Server{
		Service: service,
		Port:    port,
	}
}

// Run запускает HTTP сервер.
func (s *Server) Run() error {
	mux := http.DefaultServeMux

	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	debugHandler := NewDebugHandler(s.Service)
	debugHandler.RegisterRoutes(mux)

	logger.Log.Infof("⚔️  Combat session server running on :%s", s.Port)
	return http.ListenAndServe(":"+s.Port, mux)
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleWS подключает клиента к сессии боя.
// Идентичность приходит query-параметрами: внешний слой авторизации
// (вне этого сервиса) обязан выдать их после проверки токена.
//
//	/ws?combat=<id>&campaign=<id>&player=<id>&gm=1&entities=a,b,c
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	combatID := q.Get("combat")
	if combatID == "" {
		http.Error(w, "combat query parameter is required", http.StatusBadRequest)
		return
	}

	info := domain.ClientInfo{
		ConnID:     uuid.NewString(),
		PlayerID:   q.Get("player"),
		IsGM:       q.Get("gm") == "1" || q.Get("gm") == "true",
		Controlled: parseControlled(q.Get("entities")),
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Error("Upgrade error")
		return
	}

	session := s.Service.Session(combatID, q.Get("campaign"))
	client := NewClient(session, conn, info)

	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version.Info())
}
