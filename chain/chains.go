// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

// names of all chains
const (
	Polkadot  = "polkadot"
	Kusama    = "kusama"
	Substrate = "substrate"
	Local     = "local"
)

// address prefix of each chain, local development nodes use the
// generic substrate prefix
var prefixes = map[string]byte{
	Polkadot:  0,
	Kusama:    2,
	Substrate: 42,
	Local:     42,
}

// Valid - validate a chain name
func Valid(name string) bool {
	_, ok := prefixes[name]
	return ok
}

// AddressPrefix - SS58 network prefix for a chain
func AddressPrefix(name string) (byte, bool) {
	prefix, ok := prefixes[name]
	return prefix, ok
}
