package network

import (
	"testing"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/api"
)

func TestBroadcasterRoundtrip(t *testing.T) {
	b := NewBroadcaster()

	ch1 := b.Register("conn-1")
	ch2 := b.Register("conn-2")
	if b.SubscriberCount() != 2 {
		t.Fatalf("subscribers = %d, want 2", b.SubscriberCount())
	}

	b.Broadcast(api.ServerEvent{Type: "ROUND_STARTED", Version: 1})
	if ev := <-ch1; ev.Type != "ROUND_STARTED" {
		t.Errorf("conn-1 got %s", ev.Type)
	}
	if ev := <-ch2; ev.Type != "ROUND_STARTED" {
		t.Errorf("conn-2 got %s", ev.Type)
	}

	b.SendTo("conn-1", api.ServerEvent{Type: "STATE_SYNC"})
	if ev := <-ch1; ev.Type != "STATE_SYNC" {
		t.Errorf("unicast got %s", ev.Type)
	}
	select {
	case ev := <-ch2:
		t.Errorf("unicast leaked to conn-2: %s", ev.Type)
	default:
	}

	b.Unregister("conn-2")
	if b.SubscriberCount() != 1 {
		t.Errorf("subscribers = %d after unregister, want 1", b.SubscriberCount())
	}
	if _, open := <-ch2; open {
		t.Error("unregister must close the subscriber channel")
	}
}

func TestBroadcasterReRegisterReplacesChannel(t *testing.T) {
	b := NewBroadcaster()

	old := b.Register("conn")
	fresh := b.Register("conn")

	if _, open := <-old; open {
		t.Error("stale channel must be closed on re-register")
	}
	b.SendTo("conn", api.ServerEvent{Type: "STATE_SYNC"})
	if ev := <-fresh; ev.Type != "STATE_SYNC" {
		t.Errorf("fresh channel got %s", ev.Type)
	}
	if b.SubscriberCount() != 1 {
		t.Errorf("subscribers = %d, want 1", b.SubscriberCount())
	}
}

func TestBroadcasterDropsWhenSubscriberLags(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("slow")

	// Переполняем буфер: рассылка не должна блокироваться
	for i := 0; i < 150; i++ {
		b.Broadcast(api.ServerEvent{Type: "TURN_STARTED", Version: uint64(i)})
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered = %d, want full buffer %d with the rest dropped", got, cap(ch))
	}
}
