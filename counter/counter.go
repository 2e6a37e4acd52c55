// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter

import (
	"sync/atomic"
)

// Counter - number of open client connections
type Counter uint64

// Acquire - count one more connection unless that would exceed
// maximum, returns false if the connection must be refused
func (ic *Counter) Acquire(maximum uint64) bool {
	if atomic.AddUint64((*uint64)(ic), 1) <= maximum {
		return true
	}
	ic.Release()
	return false
}

// Release - one connection has closed
func (ic *Counter) Release() {
	atomic.AddUint64((*uint64)(ic), ^uint64(0))
}

// Uint64 - returns current value
func (ic *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}
