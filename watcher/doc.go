// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package watcher - follow the kitty count on the node
//
// the count watcher is a background process holding one storage
// subscription, every decoded value is passed to a sink and the
// watcher stops when the subscription is lost
//
// the connector redials a lost node with a doubling delay and starts
// a new count watcher on each connection
package watcher
