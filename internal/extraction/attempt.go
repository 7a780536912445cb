package extraction

// attempt is one step of a heuristic chain. It reports whether it produced a
// value.
type attempt[T any] func() (T, bool)

// firstOf runs attempts in order and returns the first successful value.
func firstOf[T any](attempts ...attempt[T]) (T, bool) {
	for _, try := range attempts {
		if v, ok := try(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
