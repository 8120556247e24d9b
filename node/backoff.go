/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package node

import (
	"math/rand"
	"time"
)

const (
	maxBackoff = 30 * time.Second
	// Beyond this many doublings, base*2^(attempt-1) already dwarfs
	// maxBackoff, so there is no need to compute the (potentially
	// overflowing) shift.
	maxBackoffShift = 20
)

// backoffDelay implements the node's reconnect backoff:
// min(base*2^(attempt-1) + U(0,1000ms), 30s). attempt is 1-indexed.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift > maxBackoffShift {
		return maxBackoff
	}

	delay := base * time.Duration(int64(1)<<uint(shift))
	jitter := time.Duration(rand.Int63n(int64(time.Second))) // U(0, 1000ms)
	delay += jitter

	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}
