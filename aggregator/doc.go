// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package aggregator - merge the count and both lookup stores into
// the published view
//
// a single background loop owns the count and the stores, the count
// watcher, the fetcher and the owner watch only send events to it, so
// no lock guards the aggregation state.  Each change of count or of
// either store produces exactly one new view.
//
// results are kept per index: a later completion replaces what an
// earlier one recorded for the same index, and results for indices at
// or beyond the current count are discarded.
package aggregator
