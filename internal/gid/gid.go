// Package gid identifies the calling goroutine. rgpu's concurrency model
// (spec §5) is built around "the thread that holds the Gpu's claim";
// Go's nearest analogue to a thread is a goroutine pinned with
// runtime.LockOSThread, so the claim discipline is implemented against
// goroutine identity rather than OS thread identity.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns an identifier for the calling goroutine, derived from
// the runtime's own debug stack header ("goroutine N [running]: ..."). It
// is only used as an equality key for the claim discipline, never
// persisted or exposed to API consumers.
func Current() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
