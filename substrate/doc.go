// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package substrate - minimal client for a Substrate node
//
// JSON-RPC 2.0 over a websocket: storage subscriptions
// (state_subscribeStorage) and batched point lookups
// (state_queryStorageAt), together with the storage key hashing,
// SCALE option decoding and SS58 account rendering needed to use them.
package substrate
