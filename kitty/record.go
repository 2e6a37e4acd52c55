// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kitty

// Record - one kitty as delivered to clients
//
// DNA and Owner are only meaningful when the matching state is Present
type Record struct {
	Id         Index  `json:"id,string"`
	DNA        DNA    `json:"dna"`
	DNAState   State  `json:"dnaState"`
	Owner      string `json:"owner,omitempty"`
	OwnerState State  `json:"ownerState"`
}

// Resolved - true when both halves hold a value
func (r Record) Resolved() bool {
	return Present == r.DNAState && Present == r.OwnerState
}

// View - one published aggregation
type View struct {
	Sequence uint64   `json:"sequence,string"`
	Count    Count    `json:"count,string"`
	Records  []Record `json:"records"`
}

// OwnedBy - the records whose resolved owner is the given account
func (v View) OwnedBy(owner string) []Record {
	owned := make([]Record, 0, len(v.Records))
	for _, r := range v.Records {
		if Present == r.OwnerState && owner == r.Owner {
			owned = append(owned, r)
		}
	}
	return owned
}
