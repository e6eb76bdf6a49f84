package domain

// Some returns a pointer to v. Record fields use nil for None.
func Some[T any](v T) *T {
	return &v
}
