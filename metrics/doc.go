// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics - prometheus collectors for the watch pipeline
//
// all collectors register with the default registry, Handler serves
// them on the profiling listener
package metrics
