// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package submit - hand create requests to an external signing command
//
// kittywatch holds no keys, the configured command is expected to
// build, sign and send the createKitty extrinsic and exit non-zero on
// failure
package submit
