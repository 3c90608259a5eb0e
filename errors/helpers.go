package errors

// WrapOpComponent wraps err with consistent Op and Component propagation.
// It avoids repetition when creating structured errors throughout the
// codebase. If err is nil, returns nil.
func WrapOpComponent(err error, op Operation, component string) error {
	if err == nil {
		return nil
	}
	return NewWithComponent(op, component, err)
}

// WrapStorage wraps a persistence failure, preserving nil.
func WrapStorage(err error, op Operation, component string) error {
	if err == nil {
		return nil
	}
	return NewStorageError(op, component, err)
}
