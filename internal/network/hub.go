package network

import (
	"sync"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

// Broadcaster занимается только рассылкой событий подписчикам сессии.
// Ключ - ID подключения: к одной сессии могут смотреть несколько
// клиентов одного игрока, а у ГМа вообще нет своей сущности.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ConnID -> Личный канал
	subscribers map[string]chan api.ServerEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerEvent),
	}
}

// Register создает личный канал для подключения.
func (b *Broadcaster) Register(connID string) chan api.ServerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[connID]; ok {
		close(old)
	}

	ch := make(chan api.ServerEvent, 100)
	b.subscribers[connID] = ch
	return ch
}

// Unregister удаляет подписчика. Состояние сессии при этом не меняется:
// пропавший клиент восстановится через REQUEST_STATE.
func (b *Broadcaster) Unregister(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[connID]; ok {
		close(ch)
		delete(b.subscribers, connID)
	}
}

// SendTo отправляет событие конкретному подключению (Unicast).
func (b *Broadcaster) SendTo(connID string, evt api.ServerEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[connID]; ok {
		select {
		case ch <- evt:
		default:
			// Канал переполнен: клиент отстал, он пересинхронизируется сам
		}
	}
}

// Broadcast отправляет событие всем подписчикам сессии.
func (b *Broadcaster) Broadcast(evt api.ServerEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
