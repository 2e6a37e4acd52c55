// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/metrics"
)

func TestClass(t *testing.T) {
	tests := []struct {
		err   error
		class string
	}{
		{fault.ConnectionLost, "connection"},
		{fault.Wrap(fault.DNADecodeFailed, "tag"), "decode"},
		{fault.Wrap(fault.RequestFailed, "503"), "transport"},
		{fault.CreateCommandFailed, "process"},
		{errors.New("other"), "other"},
	}
	for i, item := range tests {
		assert.Equal(t, item.class, metrics.Class(item.err), "%d: wrong class", i)
	}
}

func TestHandler(t *testing.T) {
	metrics.Count.Set(3)
	metrics.Failed(fault.ConnectionLost)

	recorder := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body := recorder.Body.String()
	assert.True(t, strings.Contains(body, "kittywatch_count 3"), "count gauge missing")
	assert.True(t, strings.Contains(body, `kittywatch_errors_total{class="connection"}`), "error counter missing")
}
