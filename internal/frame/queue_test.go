package frame

import "testing"

func TestQueueDefersUntilFlush(t *testing.T) {
	q := NewQueue()
	ran := 0
	q.Schedule(func() { ran++ })
	if ran != 0 {
		t.Fatalf("job ran before Flush")
	}
	if !q.Pending() {
		t.Fatalf("expected pending job")
	}
	if !q.Flush() {
		t.Fatalf("Flush() = false, want true")
	}
	if ran != 1 {
		t.Fatalf("ran = %d, want 1", ran)
	}
	if q.Flush() {
		t.Fatalf("second Flush() = true, want false")
	}
}

func TestQueueCoalescesToLatest(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		q.Schedule(func() { got = append(got, i) })
	}
	q.Flush()
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("got %v, want [3]", got)
	}
	if n := q.Superseded(); n != 2 {
		t.Fatalf("Superseded() = %d, want 2", n)
	}
}

func TestQueueJobMayReschedule(t *testing.T) {
	q := NewQueue()
	ran := 0
	q.Schedule(func() {
		ran++
		q.Schedule(func() { ran++ })
	})
	q.Flush()
	if ran != 1 || !q.Pending() {
		t.Fatalf("ran = %d pending = %v, want 1 true", ran, q.Pending())
	}
	q.Flush()
	if ran != 2 {
		t.Fatalf("ran = %d, want 2", ran)
	}
}

func TestImmediateRunsInline(t *testing.T) {
	ran := false
	Immediate{}.Schedule(func() { ran = true })
	if !ran {
		t.Fatalf("Immediate did not run job")
	}
}
