package mqtt

import (
	"testing"
)

func msg(i int) pendingMsg {
	return pendingMsg{topic: "t", payload: []byte{byte(i)}}
}

// popAll empties b, oldest first.
func popAll(b *backlog) []pendingMsg {
	var out []pendingMsg
	for {
		m, ok := b.pop()
		if !ok {
			return out
		}
		out = append(out, m)
	}
}

func TestBacklogEmptyPop(t *testing.T) {
	b := newBacklog(10)
	if got := popAll(b); got != nil {
		t.Errorf("expected nothing from empty backlog, got %d items", len(got))
	}
	if b.len() != 0 {
		t.Errorf("expected len 0, got %d", b.len())
	}
	if _, ok := b.pop(); ok {
		t.Error("pop on empty backlog should report false")
	}
}

func TestBacklogPushAndPop(t *testing.T) {
	b := newBacklog(10)
	for i := 0; i < 5; i++ {
		b.push(msg(i))
	}
	if b.len() != 5 {
		t.Fatalf("expected len 5, got %d", b.len())
	}

	got := popAll(b)
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := range got {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	if got := popAll(b); got != nil {
		t.Errorf("expected nothing after emptying, got %d items", len(got))
	}
}

func TestBacklogOverflowKeepsNewest(t *testing.T) {
	const capacity = 5
	b := newBacklog(capacity)

	// 0..7 pushed; 3..7 survive
	for i := 0; i < capacity+3; i++ {
		b.push(msg(i))
	}
	if b.dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", b.dropped)
	}

	got := popAll(b)
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := range got {
		if want := byte(i + 3); got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
	if b.dropped != 0 {
		t.Errorf("emptying should reset dropped, got %d", b.dropped)
	}
}

func TestBacklogReusableAfterEmptying(t *testing.T) {
	b := newBacklog(4)
	for i := 0; i < 3; i++ {
		b.push(msg(i))
	}
	popAll(b)

	for i := 10; i < 16; i++ {
		b.push(msg(i))
	}
	got := popAll(b)
	if len(got) != 4 {
		t.Fatalf("expected 4 items, got %d", len(got))
	}
	if got[0].payload[0] != 12 || got[3].payload[0] != 15 {
		t.Errorf("unexpected order: first %d last %d", got[0].payload[0], got[3].payload[0])
	}
}

func TestBacklogPreservesFields(t *testing.T) {
	b := newBacklog(2)
	b.push(pendingMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})

	got := popAll(b)
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	m := got[0]
	if m.topic != TopicSystem || string(m.payload) != "x" || m.qos != 1 || !m.retained {
		t.Errorf("fields not preserved: %+v", m)
	}
}

func TestBacklogPushAfterPartialPop(t *testing.T) {
	b := newBacklog(3)
	b.push(msg(0))
	b.push(msg(1))
	b.pop()
	b.push(msg(2))
	b.push(msg(3))

	got := popAll(b)
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, want := range []byte{1, 2, 3} {
		if got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
}
