package api

import "testing"

func TestLiveHub_PublishDeliversToSubscriber(t *testing.T) {
	hub := newLiveHub()
	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	hub.publish(liveEvent{PlayerID: "p1", Score: 42, Accepted: true})

	select {
	case ev := <-ch:
		if ev.PlayerID != "p1" || ev.Score != 42 || !ev.Accepted {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected a buffered event to be immediately available")
	}
}

func TestLiveHub_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	hub := newLiveHub()
	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	for i := 0; i < 64; i++ {
		hub.publish(liveEvent{PlayerID: "p1", Score: i})
	}
}

func TestLiveHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := newLiveHub()
	ch := hub.subscribe()
	hub.unsubscribe(ch)

	hub.publish(liveEvent{PlayerID: "p1", Score: 1})

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}
