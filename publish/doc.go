// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package publish - hold the latest view and status and push them to
// subscribers
//
// every Publish produces one new sequence number and is offered to
// each subscriber; a subscriber that has not taken the previous view
// only sees the newest one.  The broadcaster is one such subscriber
// and forwards everything on a ZeroMQ PUB socket as two frame
// messages:
//
//   "view"   JSON kitty.View
//   "status" JSON Status
package publish
