// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package kitty - the records assembled from the kitties pallet
//
// A kitty is split across two storage maps on the node, the DNA map
// and the owner map, both keyed by a dense index below the current
// count.  A Record joins the two halves for one index and says
// explicitly whether each half has been resolved.
package kitty
