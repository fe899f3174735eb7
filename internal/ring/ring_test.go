package ring

import "testing"

func TestQueueFIFOOrder(t *testing.T) {
	q := New[int](2)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	got := q.DrainAll()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("DrainAll returned %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestQueueGrowsPastHint(t *testing.T) {
	q := New[int](1)
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	if q.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", q.Len())
	}
	if got := len(q.DrainAll()); got != 10 {
		t.Fatalf("DrainAll length = %d, want 10", got)
	}
}

func TestQueueDrainEmptyReturnsNil(t *testing.T) {
	q := New[int](4)
	if got := q.DrainAll(); got != nil {
		t.Fatalf("DrainAll on an empty queue = %v, want nil", got)
	}
}
