package rgpu

import "testing"

func TestUniformStoreUpsertPreservesInsertionOrder(t *testing.T) {
	var u UniformStore
	u.Upsert("b", NewIntValue(1))
	u.Upsert("a", NewIntValue(2))
	u.Upsert("b", NewIntValue(3)) // overwrite, should not move

	order := u.Ordered()
	if len(order) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(order))
	}
	if order[0].Name != "b" || order[1].Name != "a" {
		t.Fatalf("insertion order not preserved: got %q, %q", order[0].Name, order[1].Name)
	}
	if order[0].Value.Int() != 3 {
		t.Fatalf("overwrite did not update value: got %d, want 3", order[0].Value.Int())
	}
}

func TestUniformStoreLookupMiss(t *testing.T) {
	var u UniformStore
	if _, ok := u.Lookup("missing"); ok {
		t.Fatalf("expected lookup miss on empty store")
	}
}
