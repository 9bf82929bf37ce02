package broadcast

import "testing"

func TestPublishDropsOnFullChannel(t *testing.T) {
	b := New[int](1)
	rx, unsub := b.Subscribe()
	defer unsub()

	if n := b.Publish(1); n != 1 {
		t.Fatalf("expected first publish to be delivered, got %d", n)
	}
	if n := b.Publish(2); n != 0 {
		t.Fatalf("expected second publish to drop on a full channel, got %d", n)
	}
	if got := <-rx; got != 1 {
		t.Fatalf("expected buffered value 1, got %d", got)
	}
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	b := New[int](4)
	b.Close()

	rx, unsub := b.Subscribe()
	defer unsub()

	if _, ok := <-rx; ok {
		t.Fatalf("expected an already-closed channel for a post-close subscriber")
	}
}

func TestUnsubscribeStopsFutureDelivery(t *testing.T) {
	b := New[int](4)
	rx, unsub := b.Subscribe()
	unsub()

	if n := b.Publish(1); n != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe, got %d", n)
	}
	if _, ok := <-rx; ok {
		t.Fatalf("expected unsubscribed channel to be closed")
	}
}

func TestLenReflectsActiveSubscribers(t *testing.T) {
	b := New[int](1)
	_, unsub1 := b.Subscribe()
	_, unsub2 := b.Subscribe()
	if b.Len() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", b.Len())
	}
	unsub1()
	if b.Len() != 1 {
		t.Fatalf("expected 1 subscriber after unsubscribe, got %d", b.Len())
	}
	unsub2()
}
