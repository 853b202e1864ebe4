package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/domain"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между WebSocket-соединением и актором сессии.
// Идентичность (playerId, isGM, подконтрольные сущности) выдается
// при подключении и не меняется до разрыва.
type Client struct {
	Session *engine.Session
	Conn    *websocket.Conn
	Send    chan api.ServerEvent
	Info    domain.ClientInfo
}

func NewClient(session *engine.Session, conn *websocket.Conn, info domain.ClientInfo) *Client {
	return &Client{
		Session: session,
		Conn:    conn,
		Send:    make(chan api.ServerEvent, 256),
		Info:    info,
	}
}

// readPump читает команды от клиента и проталкивает их в актор сессии.
func (c *Client) readPump() {
	defer func() {
		c.Session.Hub.Unregister(c.Info.ConnID)
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("failed to close websocket connection")
		}
		// Состояние боя при дисконнекте НЕ трогаем: сущности игрока
		// остаются как есть, клиент восстановится через REQUEST_STATE
		logger.Log.WithFields(logrus.Fields{
			"conn_id":   c.Info.ConnID,
			"player_id": c.Info.PlayerID,
		}).Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	// 1. ПОДПИСКА НА СОБЫТИЯ СЕССИИ
	updates := c.Session.Hub.Register(c.Info.ConnID)
	go func() {
		for evt := range updates {
			c.Send <- evt
		}
		close(c.Send)
	}()

	logger.Log.WithFields(logrus.Fields{
		"conn_id":   c.Info.ConnID,
		"player_id": c.Info.PlayerID,
		"combat_id": c.Session.State.ID,
		"is_gm":     c.Info.IsGM,
	}).Info("Client connected")

	// 2. Немедленный снимок: клиент начинает с полного STATE_SYNC
	c.Session.CommandChan <- domain.InternalCommand{
		Action: domain.ActionRequestState,
		Client: c.Info,
	}

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.WithError(err).Error("WS read error")
			}
			break
		}

		c.Session.CommandChan <- domain.InternalCommand{
			Action:  domain.ParseAction(cmd.Type),
			Client:  c.Info,
			Payload: cmd.Payload,
		}
	}
}

// writePump отправляет события клиенту + пинги.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case evt, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(evt); err != nil {
				logger.Log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}

// parseControlled разбирает список ID сущностей из query-параметра.
func parseControlled(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = true
		}
	}
	return set
}
