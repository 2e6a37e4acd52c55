// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kitty

import (
	"encoding/hex"
)

// Index - key shared by the DNA and owner maps
type Index = uint64

// Count - exclusive upper bound of valid indices
type Count = uint64

// DNASize - bytes in a kitty payload
const DNASize = 16

// DNA - opaque appearance data
type DNA [DNASize]byte

// String - hex form of the DNA
func (dna DNA) String() string {
	return hex.EncodeToString(dna[:])
}

// MarshalText - hex form for JSON
func (dna DNA) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(DNASize))
	hex.Encode(buffer, dna[:])
	return buffer, nil
}

// UnmarshalText - parse hex form
func (dna *DNA) UnmarshalText(s []byte) error {
	if hex.EncodedLen(DNASize) != len(s) {
		return hex.ErrLength
	}
	_, err := hex.Decode(dna[:], s)
	return err
}

// Range - the indices [0, n) in ascending order
func Range(n Count) []Index {
	indices := make([]Index, n)
	for i := range indices {
		indices[i] = Index(i)
	}
	return indices
}
