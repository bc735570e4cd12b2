package kverrors

import "errors"

// ErrKeyNotFound is returned by Remove when the requested key is absent from
// the index. Get returning "not found" is modeled separately (as a boolean),
// since a missing key on read is routine rather than exceptional — only
// Remove treats it as an error, per the store's external contract.
var ErrKeyNotFound = errors.New("key not found")

// ErrUnexpectedCommandType is returned when the index resolves a key to a
// record that does not decode as a Set command. It signals corruption: the
// index and the log have fallen out of sync.
var ErrUnexpectedCommandType = errors.New("unexpected command type at indexed position")
