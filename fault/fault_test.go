// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"errors"
	"testing"

	"github.com/bitmark-inc/kittywatch/fault"
)

var (
	ErrConnectionOne = fault.ConnectionError("connection one")
	ErrDecodeOne     = fault.DecodeError("decode one")
	ErrExistsOne     = fault.ExistsError("exists one")
	ErrInvalidOne    = fault.InvalidError("invalid one")
	ErrLengthOne     = fault.LengthError("length one")
	ErrNotFoundOne   = fault.NotFoundError("not found one")
	ErrProcessOne    = fault.ProcessError("process one")
	ErrRecordOne     = fault.RecordError("record one")
	ErrTransportOne  = fault.TransportError("transport one")
)

// test that the various errors can be classified
func TestClasses(t *testing.T) {
	errorList := []struct {
		err        error
		connection bool
		decode     bool
		exists     bool
		invalid    bool
		length     bool
		notFound   bool
		process    bool
		record     bool
		transport  bool
	}{
		{ErrConnectionOne, true, false, false, false, false, false, false, false, false},
		{ErrDecodeOne, false, true, false, false, false, false, false, false, false},
		{ErrExistsOne, false, false, true, false, false, false, false, false, false},
		{ErrInvalidOne, false, false, false, true, false, false, false, false, false},
		{ErrLengthOne, false, false, false, false, true, false, false, false, false},
		{ErrNotFoundOne, false, false, false, false, false, true, false, false, false},
		{ErrProcessOne, false, false, false, false, false, false, true, false, false},
		{ErrRecordOne, false, false, false, false, false, false, false, true, false},
		{ErrTransportOne, false, false, false, false, false, false, false, false, true},
		{fault.Wrap(ErrTransportOne, "detail"), false, false, false, false, false, false, false, false, true},
		{fault.Wrap(ErrConnectionOne, "detail"), true, false, false, false, false, false, false, false, false},
		{errors.New("plain"), false, false, false, false, false, false, false, false, false},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrConnection(err) != e.connection {
			t.Errorf("%d: expected 'connection' == %v for err = %v", i, e.connection, err)
		}
		if fault.IsErrDecode(err) != e.decode {
			t.Errorf("%d: expected 'decode' == %v for err = %v", i, e.decode, err)
		}
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrLength(err) != e.length {
			t.Errorf("%d: expected 'length' == %v for err = %v", i, e.length, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
		if fault.IsErrRecord(err) != e.record {
			t.Errorf("%d: expected 'record' == %v for err = %v", i, e.record, err)
		}
		if fault.IsErrTransport(err) != e.transport {
			t.Errorf("%d: expected 'transport' == %v for err = %v", i, e.transport, err)
		}
	}
}

func TestWrap(t *testing.T) {
	err := fault.Wrap(fault.RequestFailed, "state_queryStorageAt: 503")
	if "request failed: state_queryStorageAt: 503" != err.Error() {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, fault.RequestFailed) {
		t.Errorf("wrapped error does not match its base")
	}
}

func TestWrapNested(t *testing.T) {
	err := fault.Wrap(fault.Wrap(fault.DNADecodeFailed, "option tag: 0x07"), "index: 3")
	if !fault.IsErrDecode(err) {
		t.Errorf("nested wrap lost its class")
	}
	if !errors.Is(err, fault.DNADecodeFailed) {
		t.Errorf("nested wrap does not match its base")
	}
	if "dna value is malformed: option tag: 0x07: index: 3" != err.Error() {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
