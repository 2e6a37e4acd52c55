// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// maintain the on-disk copy of the last-good aggregation
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the avaiable tables.
//
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. index        = kitty index as big endian uint64 (8 bytes)
// 4. state        = one byte: 0x01 absent, 0x02 present
// 5. dna          = 16 bytes
// 6. account      = 32 byte account id
//
// Counts:
//
//   C ++ "kitties"             - count the stored lookups belong to
//                                data: count (big endian uint64, 8 bytes)
//
// Kitties:
//
//   K ++ index                 - dna lookup result
//                                data: state ++ dna        (present)
//                                data: state               (absent)
//
// Owners:
//
//   O ++ index                 - owner lookup result
//                                data: state ++ account    (present)
//                                data: state               (absent)
//
// Pending indices are never written, a missing record reads as pending.
package storage
