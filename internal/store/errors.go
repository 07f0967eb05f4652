package store

import "errors"

// ErrWrongType is returned by shape-specific helpers (LPush, SAdd, ...) when
// the existing value's shape does not match the operation's required
// shape. The executor translates it into the WRONGTYPE protocol error.
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// ErrNotInteger is returned by INCRBY/DECRBY when the stored value is not a
// base-10 integer.
var ErrNotInteger = errors.New("ERR value is not an integer or out of range")
