package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/umerali06/fixora-pro-sync/internal/domain"
)

func TestPublishReachesSubscriber(t *testing.T) {
	c := NewCenter()
	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	c.Publish(Notification{Level: LevelSuccess, EntityType: domain.EntityCustomer, Action: "create", Message: "customer created"})
	select {
	case n := <-ch:
		if n.Level != LevelSuccess || n.EntityType != domain.EntityCustomer {
			t.Fatalf("unexpected notification %#v", n)
		}
		if n.At.IsZero() {
			t.Fatalf("At must be stamped")
		}
	case <-time.After(time.Second):
		t.Fatalf("notification never delivered")
	}
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	c := NewCenter()
	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		// nobody reads ch; the channel buffer fills and overflow drops
		for i := 0; i < 100; i++ {
			c.Publish(Notification{Message: fmt.Sprintf("n%d", i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}

func TestRecentRingBounded(t *testing.T) {
	c := NewCenter()
	for i := 0; i < 200; i++ {
		c.Publish(Notification{Message: fmt.Sprintf("n%d", i)})
	}
	all := c.Recent(0)
	if len(all) != defaultBuffer {
		t.Fatalf("ring must cap at %d, got %d", defaultBuffer, len(all))
	}
	if all[len(all)-1].Message != "n199" {
		t.Fatalf("newest entry must survive, got %s", all[len(all)-1].Message)
	}
	last3 := c.Recent(3)
	if len(last3) != 3 || last3[0].Message != "n197" {
		t.Fatalf("Recent(3) wrong: %#v", last3)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	c := NewCenter()
	ch := c.Subscribe()
	c.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("channel must be closed after unsubscribe")
	}
	// double unsubscribe is safe
	c.Unsubscribe(ch)
}
