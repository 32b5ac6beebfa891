package slot

import "testing"

func TestNextGrowsFromEmpty(t *testing.T) {
	res := NewReservations()
	got := Next("SAUCE", Set{}, Set{}, res)
	if got != 1 {
		t.Errorf("expected slot 1 on empty state, got %d", got)
	}
	if !res.Reserved("SAUCE", 1) {
		t.Error("returned slot not recorded in reservations")
	}
}

func TestNextGrowsAboveHighest(t *testing.T) {
	res := NewReservations()
	got := Next("SAUCE", Set{1: true, 2: true, 5: true}, Set{}, res)
	if got != 6 {
		t.Errorf("expected slot 6 above highest used, got %d", got)
	}
}

func TestNextCountsReservationsAsUsed(t *testing.T) {
	res := NewReservations()
	for want := 1; want <= 5; want++ {
		got := Next("SAUCE", Set{}, Set{}, res)
		if got != want {
			t.Fatalf("allocation %d: expected slot %d, got %d", want, want, got)
		}
	}
}

func TestNextReservationsAreScopedByItemCode(t *testing.T) {
	res := NewReservations()
	if got := Next("SAUCE", Set{}, Set{}, res); got != 1 {
		t.Fatalf("SAUCE: expected 1, got %d", got)
	}
	if got := Next("MAYO", Set{}, Set{}, res); got != 1 {
		t.Errorf("MAYO: expected 1 (independent of SAUCE), got %d", got)
	}
}

func TestNextFullRange(t *testing.T) {
	// Allocating MaxSlot fresh units yields exactly 1..MaxSlot.
	res := NewReservations()
	seen := make(Set)
	for i := 0; i < MaxSlot; i++ {
		got := Next("SAUCE", Set{}, Set{}, res)
		if seen[got] {
			t.Fatalf("slot %d allocated twice", got)
		}
		seen[got] = true
	}
	for s := 1; s <= MaxSlot; s++ {
		if !seen[s] {
			t.Errorf("slot %d never allocated", s)
		}
	}
}

func TestNextReusesLowestDepletedSlot(t *testing.T) {
	used := make(Set)
	for s := 1; s <= MaxSlot; s++ {
		used[s] = true
	}
	// Slots 3 and 7 hold only depleted units.
	delete(used, 3)
	delete(used, 7)
	depleted := Set{3: true, 7: true}

	res := NewReservations()
	if got := Next("SAUCE", used, depleted, res); got != 3 {
		t.Errorf("expected lowest depleted slot 3, got %d", got)
	}
	if got := Next("SAUCE", used, depleted, res); got != 7 {
		t.Errorf("expected next depleted slot 7, got %d", got)
	}
}

func TestNextDepletedSlotStillUsedIsSkipped(t *testing.T) {
	// Slot 3 has both a depleted unit and an active one: not reusable.
	used := make(Set)
	for s := 1; s <= MaxSlot; s++ {
		used[s] = true
	}
	delete(used, 7)
	depleted := Set{3: true, 7: true}

	res := NewReservations()
	if got := Next("SAUCE", used, depleted, res); got != 7 {
		t.Errorf("expected slot 7, got %d", got)
	}
}

func TestNextFallsBackToSlotOne(t *testing.T) {
	used := make(Set)
	for s := 1; s <= MaxSlot; s++ {
		used[s] = true
	}
	res := NewReservations()
	if got := Next("SAUCE", used, Set{}, res); got != 1 {
		t.Errorf("expected fallback slot 1 under exhaustion, got %d", got)
	}
}

func TestNextBatchNeverCollides(t *testing.T) {
	// A 20-unit batch on top of existing stock must hand out 20 distinct
	// slots before anything is persisted.
	used := Set{1: true, 2: true, 3: true}
	res := NewReservations()
	seen := make(Set)
	for i := 0; i < 20; i++ {
		got := Next("SAUCE", used, Set{}, res)
		if used[got] || seen[got] {
			t.Fatalf("batch allocation returned occupied slot %d", got)
		}
		seen[got] = true
	}
}
