// Package slot computes the next physical storage slot for a unit of an
// item code. Slots grow upward to a fixed bound so numbering stays in
// ascending receive order per item; once the range is exhausted, slots
// vacated by depleted units are recycled lowest-first.
package slot

// MaxSlot is the highest valid slot number. Slots run 1..MaxSlot.
const MaxSlot = 65

// Set is a set of slot numbers.
type Set map[int]bool

// Reservations tracks slots handed out during one batch operation,
// keyed by item code, before the corresponding rows are persisted.
// It is passed explicitly through batch creation so allocation has no
// hidden process-wide state.
type Reservations map[string]Set

// NewReservations returns an empty reservation set for one batch.
func NewReservations() Reservations {
	return make(Reservations)
}

// Reserve records a slot as taken for an item code within this batch.
func (r Reservations) Reserve(itemCode string, s int) {
	if r[itemCode] == nil {
		r[itemCode] = make(Set)
	}
	r[itemCode][s] = true
}

// Reserved reports whether a slot is already reserved in this batch.
func (r Reservations) Reserved(itemCode string, s int) bool {
	return r[itemCode][s]
}

// Next returns the next slot for itemCode and records it in res.
//
// used must hold every slot occupied by a non-depleted inventory unit or
// any anticipated entry for this item code; depleted holds slots occupied
// only by depleted units (candidates for reuse). The policy:
//
//  1. While the highest occupied slot is below MaxSlot, grow: highest+1.
//  2. Otherwise reuse the lowest depleted slot not currently occupied.
//  3. Otherwise fall back to slot 1. Under total exhaustion this can
//     duplicate a slot number across lifecycle states; callers rely on
//     the storage constraint to reject it when it actually collides.
//
// Next always returns a slot and never fails.
func Next(itemCode string, used, depleted Set, res Reservations) int {
	highest := 0
	for s := range used {
		if s > highest {
			highest = s
		}
	}
	for s := range res[itemCode] {
		if s > highest {
			highest = s
		}
	}

	if highest < MaxSlot {
		next := highest + 1
		res.Reserve(itemCode, next)
		return next
	}

	// No room to grow: recycle the lowest free depleted slot.
	for s := 1; s <= MaxSlot; s++ {
		if depleted[s] && !used[s] && !res.Reserved(itemCode, s) {
			res.Reserve(itemCode, s)
			return s
		}
	}

	res.Reserve(itemCode, 1)
	return 1
}
