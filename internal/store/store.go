// Package store persists the machine-local sync log and conflict ledger as
// JSON files. Every mutation is load, modify, write-back; writes go through
// an atomic rename so a crash never leaves a half-written state file.
package store

import "errors"

// ErrCorruptState marks a state file that exists but cannot be decoded.
var ErrCorruptState = errors.New("corrupt state file")
