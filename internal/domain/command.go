package domain

import "encoding/json"

// ClientInfo - идентичность подключения, выданная внешним сервисом
// авторизации при коннекте. Внутри сессии ей доверяем.
type ClientInfo struct {
	ConnID   string // ID подключения (для unicast-ответов)
	PlayerID string
	IsGM     bool

	// ControlledEntityIDs - сущности, за которые клиент может действовать.
	Controlled map[string]bool
}

// Controls отвечает, может ли клиент действовать за сущность:
// ГМ может всё, игрок - только за свои сущности.
func (c ClientInfo) Controls(e *Entity) bool {
	if e == nil {
		return false
	}
	if c.IsGM {
		return true
	}
	if e.Controller != "" && e.Controller == c.PlayerID {
		return true
	}
	return c.Controlled[e.ID]
}

// InternalCommand - команда внутри движка: распарсенный тип действия,
// идентичность отправителя и сырой payload (парсится хендлером).
type InternalCommand struct {
	Action  ActionType
	Client  ClientInfo
	Payload json.RawMessage
}

// Event - результат мутации, готовый к рассылке.
// ToSender=true означает unicast отправителю команды (STATE_SYNC,
// ACTION_REJECTED); broadcast-события двигают версию сессии.
type Event struct {
	Type     string
	Payload  interface{}
	ToSender bool
}
