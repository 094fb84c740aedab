package common

// Coalesce returns the first value that is not T's zero value, or the zero value when all are.
func Coalesce[T comparable](values ...T) (out T) {
	for _, v := range values {
		if v != out {
			return v
		}
	}
	return out
}
