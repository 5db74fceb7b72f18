package events

import (
	"sort"
	"testing"
)

func TestSubscribeAndReceiversFor(t *testing.T) {
	subs := NewSubscriptions()

	subs.Subscribe("recv-1", "src-a")
	subs.Subscribe("recv-2", "src-a")
	subs.Subscribe("recv-3", "src-b")

	got := subs.ReceiversFor("src-a")
	sort.Strings(got)
	if len(got) != 2 || got[0] != "recv-1" || got[1] != "recv-2" {
		t.Errorf("ReceiversFor(src-a) = %v", got)
	}
	if src := subs.SourceFor("recv-3"); src != "src-b" {
		t.Errorf("SourceFor(recv-3) = %q, want src-b", src)
	}
}

func TestSubscribeReplacesPrevious(t *testing.T) {
	subs := NewSubscriptions()

	subs.Subscribe("recv-1", "src-a")
	subs.Subscribe("recv-1", "src-b")

	if got := subs.ReceiversFor("src-a"); len(got) != 0 {
		t.Errorf("receiver still subscribed to old source: %v", got)
	}
	if got := subs.ReceiversFor("src-b"); len(got) != 1 || got[0] != "recv-1" {
		t.Errorf("ReceiversFor(src-b) = %v", got)
	}
	if src := subs.SourceFor("recv-1"); src != "src-b" {
		t.Errorf("SourceFor = %q, want src-b", src)
	}
}

func TestUnsubscribe(t *testing.T) {
	subs := NewSubscriptions()

	subs.Subscribe("recv-1", "src-a")
	subs.Unsubscribe("recv-1")

	if got := subs.ReceiversFor("src-a"); len(got) != 0 {
		t.Errorf("ReceiversFor after unsubscribe = %v", got)
	}
	if src := subs.SourceFor("recv-1"); src != "" {
		t.Errorf("SourceFor after unsubscribe = %q", src)
	}

	// Unsubscribing an unknown receiver is a no-op
	subs.Unsubscribe("recv-unknown")
}
