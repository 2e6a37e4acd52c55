// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package substrate

import (
	"encoding/binary"
	"fmt"

	"github.com/bitmark-inc/kittywatch/fault"
)

// SCALE option tags
const (
	optionNone = 0x00
	optionSome = 0x01
)

// DecodeOptionU64 - decode an Option<u64> storage value
//
// a missing value and None both decode as zero
func DecodeOptionU64(value StorageValue) (uint64, error) {
	if !value.Present || 0 == len(value.Data) {
		return 0, nil
	}
	switch value.Data[0] {
	case optionNone:
		if 1 != len(value.Data) {
			return 0, fault.Wrap(fault.CountDecodeFailed, fmt.Sprintf("none with %d trailing bytes", len(value.Data)-1))
		}
		return 0, nil
	case optionSome:
		if 9 != len(value.Data) {
			return 0, fault.Wrap(fault.CountDecodeFailed, fmt.Sprintf("some with %d bytes", len(value.Data)-1))
		}
		return binary.LittleEndian.Uint64(value.Data[1:]), nil
	default:
		return 0, fault.Wrap(fault.CountDecodeFailed, fmt.Sprintf("option tag: 0x%02x", value.Data[0]))
	}
}

// DecodeOptionFixed - decode an Option<[u8; size]> storage value into
// buffer
//
// returns false, nil when the value is missing or None
func DecodeOptionFixed(value StorageValue, buffer []byte, class error) (bool, error) {
	if !value.Present || 0 == len(value.Data) {
		return false, nil
	}
	switch value.Data[0] {
	case optionNone:
		if 1 != len(value.Data) {
			return false, fault.Wrap(class, fmt.Sprintf("none with %d trailing bytes", len(value.Data)-1))
		}
		return false, nil
	case optionSome:
		if 1+len(buffer) != len(value.Data) {
			return false, fault.Wrap(class, fmt.Sprintf("expected %d bytes, got %d", len(buffer), len(value.Data)-1))
		}
		copy(buffer, value.Data[1:])
		return true, nil
	default:
		return false, fault.Wrap(class, fmt.Sprintf("option tag: 0x%02x", value.Data[0]))
	}
}
