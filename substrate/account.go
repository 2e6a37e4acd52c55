// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package substrate

import (
	"bytes"
	"encoding/hex"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/kittywatch/fault"
)

// AccountIDSize - bytes in an account id
const AccountIDSize = 32

const checksumSize = 2

var ss58Prefix = []byte("SS58PRE")

// AccountID - public key of an account
type AccountID [AccountIDSize]byte

// Hex - 0x prefixed form
func (a AccountID) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// SS58 - the account address for a network
//
// only the single byte prefixes (0..63) are supported
func (a AccountID) SS58(network byte) string {
	payload := make([]byte, 0, 1+AccountIDSize+checksumSize)
	payload = append(payload, network)
	payload = append(payload, a[:]...)
	payload = append(payload, ss58Checksum(payload)...)
	return base58.Encode(payload)
}

// ParseSS58 - decode an address returning the account and network
func ParseSS58(address string) (AccountID, byte, error) {
	account := AccountID{}

	payload, err := base58.Decode(address)
	if nil != err {
		return account, 0, fault.InvalidAccount
	}
	if 1+AccountIDSize+checksumSize != len(payload) {
		return account, 0, fault.InvalidAccountLength
	}
	if payload[0] > 63 {
		return account, 0, fault.InvalidAccount
	}

	split := 1 + AccountIDSize
	if !bytes.Equal(ss58Checksum(payload[:split]), payload[split:]) {
		return account, 0, fault.InvalidAccountChecksum
	}

	copy(account[:], payload[1:split])
	return account, payload[0], nil
}

func ss58Checksum(payload []byte) []byte {
	h, _ := blake2b.New512(nil)
	_, _ = h.Write(ss58Prefix)
	_, _ = h.Write(payload)
	return h.Sum(nil)[:checksumSize]
}
