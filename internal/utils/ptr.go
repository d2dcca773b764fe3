package utils

// Ptr returns a pointer to a copy of v. It is used for optional config values
// where nil means "not set".
func Ptr[T any](v T) *T {
	return &v
}
