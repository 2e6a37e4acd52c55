// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package substrate

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/kittywatch/fault"
)

// StorageKey - raw key into the node's state trie
type StorageKey []byte

// Hex - 0x prefixed lower case hex, the form used on the wire
func (k StorageKey) Hex() string {
	return "0x" + hex.EncodeToString(k)
}

// MarshalText - wire form
func (k StorageKey) MarshalText() ([]byte, error) {
	return []byte(k.Hex()), nil
}

// UnmarshalText - parse wire form
func (k *StorageKey) UnmarshalText(s []byte) error {
	b, err := decodeHex(string(s))
	if nil != err {
		return err
	}
	*k = b
	return nil
}

// Twox128 - two xxhash64 rounds with seeds 0 and 1, little endian
func Twox128(data []byte) []byte {
	result := make([]byte, 16)
	for seed := uint64(0); seed < 2; seed += 1 {
		h := xxhash.NewWithSeed(seed)
		_, _ = h.Write(data)
		binary.LittleEndian.PutUint64(result[seed*8:], h.Sum64())
	}
	return result
}

// Blake2_128Concat - 16 byte blake2b hash followed by the data
func Blake2_128Concat(data []byte) []byte {
	h, err := blake2b.New(16, nil)
	if nil != err {
		// only fails for an invalid size or key
		panic(err)
	}
	_, _ = h.Write(data)
	return append(h.Sum(nil), data...)
}

// ValueKey - key of a plain storage value
func ValueKey(pallet string, item string) StorageKey {
	key := make([]byte, 0, 32)
	key = append(key, Twox128([]byte(pallet))...)
	key = append(key, Twox128([]byte(item))...)
	return key
}

// MapKeyU64 - key of a Blake2_128Concat map entry with a u64 key
func MapKeyU64(pallet string, item string, index uint64) StorageKey {
	encoded := make([]byte, 8)
	binary.LittleEndian.PutUint64(encoded, index)

	key := ValueKey(pallet, item)
	key = append(key, Blake2_128Concat(encoded)...)
	key = append(key, encoded...)
	return key
}

// IndexFromMapKeyU64 - recover the u64 key from a Blake2_128Concat map key
func IndexFromMapKeyU64(key StorageKey) (uint64, error) {
	const expected = 16 + 16 + 16 + 8
	if expected != len(key) {
		return 0, fault.InvalidStorageKey
	}
	return binary.LittleEndian.Uint64(key[expected-8:]), nil
}

func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fault.Wrap(fault.InvalidHex, "missing 0x prefix")
	}
	b, err := hex.DecodeString(s[2:])
	if nil != err {
		return nil, fault.Wrap(fault.InvalidHex, err.Error())
	}
	return b, nil
}
