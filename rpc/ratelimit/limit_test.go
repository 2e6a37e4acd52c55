// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ratelimit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/rpc/ratelimit"
)

func TestLimit(t *testing.T) {
	limiter := rate.NewLimiter(1000, 10)

	for i := 0; i < 10; i += 1 {
		assert.Nil(t, ratelimit.Limit(limiter), "limited within burst: %d", i)
	}
}

func TestLimitN(t *testing.T) {
	limiter := rate.NewLimiter(1000, 10)

	assert.Nil(t, ratelimit.LimitN(limiter, 5, 10), "valid count limited")
	assert.Equal(t, fault.InvalidCount, ratelimit.LimitN(limiter, 0, 10), "zero count accepted")
	assert.Equal(t, fault.InvalidCount, ratelimit.LimitN(limiter, 11, 10), "large count accepted")
}

func TestLimitNExceedsBurst(t *testing.T) {
	limiter := rate.NewLimiter(1000, 2)

	err := ratelimit.LimitN(limiter, 5, 10)
	assert.Equal(t, fault.RateLimited, err, "count above burst not refused")
}
