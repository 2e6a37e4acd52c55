// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package aggregator

import (
	"github.com/bitmark-inc/kittywatch/kitty"
)

// Aggregate - build the records for [0, count)
//
// every index is included, halves without a value carry their
// Pending or Absent state; owners are rendered as SS58 addresses for
// the network prefix
func Aggregate(count kitty.Count, entities *EntityStore, owners *OwnerStore, network byte) []kitty.Record {
	indices := kitty.Range(count)
	records := make([]kitty.Record, len(indices))

	for i, index := range indices {
		e := entities.Get(index)
		o := owners.Get(index)

		r := kitty.Record{
			Id:         index,
			DNAState:   e.State,
			OwnerState: o.State,
		}
		if kitty.Present == e.State {
			r.DNA = e.DNA
		}
		if kitty.Present == o.State {
			r.Owner = o.Account.SS58(network)
		}
		records[i] = r
	}
	return records
}
