package pricing

// MinQuantity is the smallest quantity a basket line can hold.
const MinQuantity = 1

// DecrementQuantity returns q-1 and true, or q and false when q is already
// at the floor. Callers must not write anything when ok is false.
func DecrementQuantity(q int) (next int, ok bool) {
	if q <= MinQuantity {
		return q, false
	}
	return q - 1, true
}

// IncrementQuantity returns q+1. Stock is not checked.
func IncrementQuantity(q int) int {
	return q + 1
}

// ClampQuantity raises q to the floor.
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	return q
}
