// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"testing"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/util"
)

// Test IP address detection
func TestCanonical(t *testing.T) {

	testData := []struct {
		in  string
		out string
	}{
		{"127.0.0.1:1234", "127.0.0.1:1234"},
		{"127.0.0.1:1", "127.0.0.1:1"},
		{" 127.0.0.1:1 ", "127.0.0.1:1"},
		{"127.0.0.1:65535", "127.0.0.1:65535"},
		{"0.0.0.0:1234", "0.0.0.0:1234"},
		{"[::1]:1234", "[::1]:1234"},
		{"[::]:1234", "[::]:1234"},
		{"[0:0::0:0]:1234", "[::]:1234"},
		{"[0:0:0:0::1]:1234", "[::1]:1234"},
	}

	for i, d := range testData {
		c, err := util.CanonicalIPandPort("", d.in)
		if nil != err {
			t.Errorf("failed on:[%d] %q  err = %v", i, d.in, err)
			continue
		}
		if d.out != c {
			t.Errorf("converted:[%d]: %q  to: %q  expected: %q", i, d.in, c, d.out)
		}
	}
}

// Test IP address
func TestCanonicalIP(t *testing.T) {

	testData := []string{
		"127.1:1234",
		"256.0.0.0:1234",
		"0.256.0.0:1234",
		"0.0.256.0:1234",
		"0.0.0.256:1234",
		"0:0:1234",
		"[]:1234",
		"[as34::]:1234",
		"[1ffff::]:1234",
		"*:1234",
	}

	for i, d := range testData {
		c, err := util.CanonicalIPandPort("", d)
		if fault.InvalidIpAddress != err {
			t.Errorf("failed on:[%d] %q  err = %v", i, d, err)
			continue
		}
		t.Logf("converted:[%d]: %q  to: %q", i, d, c)
	}
}

// Test port range
func TestCanonicalPort(t *testing.T) {

	testData := []string{
		"127.0.0.1:0",
		"127.0.0.1:65536",
		"127.0.0.1:-1",
		"127.0.0.1:http",
	}

	for i, d := range testData {
		c, err := util.CanonicalIPandPort("", d)
		if fault.InvalidPortNumber != err {
			t.Errorf("failed on:[%d] %q  err = %v", i, d, err)
			continue
		}
		t.Logf("converted:[%d]: %q  to: %q", i, d, c)
	}
}

func TestConnectionPrefix(t *testing.T) {
	c, err := util.NewConnection("[::1]:2136")
	if nil != err {
		t.Fatalf("error: %s", err)
	}
	s, v6 := c.CanonicalIPandPort("tcp://")
	if "tcp://[::1]:2136" != s || !v6 {
		t.Errorf("unexpected: %q  v6: %v", s, v6)
	}

	_, err = util.NewConnections(nil)
	if fault.MissingParameters != err {
		t.Errorf("empty list accepted: %v", err)
	}
}
