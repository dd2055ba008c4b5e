package sentinel

import "errors"

// ErrNotFound is returned (optionally wrapped) by stores when an entity does
// not exist. Services translate it into a domain error.
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var ErrNotFound = errors.New("not found")
