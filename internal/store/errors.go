package store

import "errors"

// ErrNotFound indicates that the requested key is not set.
var ErrNotFound = errors.New("key not found")

// ErrType indicates that the stored value has an unexpected type.
var ErrType = errors.New("unexpected value type")
