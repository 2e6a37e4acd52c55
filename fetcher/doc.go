// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fetcher - batched lookups of the kitty and owner maps
//
// a batch is a list of indices, Fetch looks up the dna and the owner
// of each index as two independent requests and reports each half to
// the sink as soon as it completes
//
// WatchOwners follows the owners of a batch with storage subscriptions
// so a transfer is seen without any change of count
package fetcher
