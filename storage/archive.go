// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/aggregator"
	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/fetcher"
	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/substrate"
)

var countKey = []byte("kitties")

// record state byte
const (
	stateAbsent  = 0x01
	statePresent = 0x02
)

// Archive - last-good aggregation kept in the pools
type Archive struct {
	log *logger.L
}

// NewArchive - archive over the initialised pools
func NewArchive(log *logger.L) (*Archive, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	return &Archive{
		log: log,
	}, nil
}

// Load - read the saved snapshot
//
// returns fault.NotInitialised if nothing was ever saved
func (a *Archive) Load() (aggregator.Snapshot, error) {
	if nil == Pool.Counts {
		return aggregator.Snapshot{}, fault.DatabaseIsNotSet
	}

	count, found := Pool.Counts.GetN(countKey)
	if !found {
		return aggregator.Snapshot{}, fault.NotInitialised
	}

	snapshot := aggregator.Snapshot{
		Count:    kitty.Count(count),
		Entities: make([]fetcher.Entity, 0),
		Owners:   make([]fetcher.Owner, 0),
	}

	for _, e := range Pool.Kitties.Elements() {
		index, state, data, err := unpackRecord(e, kitty.DNASize)
		if nil != err {
			return aggregator.Snapshot{}, err
		}
		entity := fetcher.Entity{
			Index: index,
			State: state,
		}
		copy(entity.DNA[:], data)
		snapshot.Entities = append(snapshot.Entities, entity)
	}

	for _, e := range Pool.Owners.Elements() {
		index, state, data, err := unpackRecord(e, substrate.AccountIDSize)
		if nil != err {
			return aggregator.Snapshot{}, err
		}
		owner := fetcher.Owner{
			Index: index,
			State: state,
		}
		copy(owner.Account[:], data)
		snapshot.Owners = append(snapshot.Owners, owner)
	}

	a.log.Debugf("loaded count: %d  entities: %d  owners: %d", count, len(snapshot.Entities), len(snapshot.Owners))
	return snapshot, nil
}

// Save - merge a snapshot into the stored data in a single batch
//
// the count is always written, only the given results below the count
// are stored and everything stored at or beyond the count is removed,
// a pending result removes any stored value for its index
func (a *Archive) Save(snapshot aggregator.Snapshot) error {
	trx, err := NewDBTransaction()
	if nil != err {
		return err
	}

	Pool.Counts.PutN(countKey, snapshot.Count)

	for _, e := range snapshot.Entities {
		if e.Index >= snapshot.Count {
			continue
		}
		if kitty.Pending == e.State {
			Pool.Kitties.Delete(indexKey(e.Index))
			continue
		}
		Pool.Kitties.Put(indexKey(e.Index), packRecord(e.State, e.DNA[:]))
	}

	for _, o := range snapshot.Owners {
		if o.Index >= snapshot.Count {
			continue
		}
		if kitty.Pending == o.State {
			Pool.Owners.Delete(indexKey(o.Index))
			continue
		}
		Pool.Owners.Put(indexKey(o.Index), packRecord(o.State, o.Account[:]))
	}

	removed := truncate(Pool.Kitties, snapshot.Count) + truncate(Pool.Owners, snapshot.Count)
	if removed > 0 {
		a.log.Debugf("count: %d  removed: %d", snapshot.Count, removed)
	}

	return trx.Commit()
}

// delete committed elements at or beyond count
func truncate(p *PoolHandle, count kitty.Count) int {
	keys := p.KeysFrom(indexKey(count))
	for _, key := range keys {
		p.Delete(key)
	}
	return len(keys)
}

func indexKey(index kitty.Index) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)
	return key
}

func packRecord(state kitty.State, data []byte) []byte {
	if kitty.Present != state {
		return []byte{stateAbsent}
	}
	record := make([]byte, 1, 1+len(data))
	record[0] = statePresent
	return append(record, data...)
}

func unpackRecord(e Element, size int) (kitty.Index, kitty.State, []byte, error) {
	if 8 != len(e.Key) || 0 == len(e.Value) {
		return 0, kitty.Pending, nil, fault.Wrap(fault.RecordTruncated, fmt.Sprintf("key: %x", e.Key))
	}
	index := binary.BigEndian.Uint64(e.Key)

	switch e.Value[0] {
	case stateAbsent:
		return index, kitty.Absent, nil, nil
	case statePresent:
		if 1+size != len(e.Value) {
			return 0, kitty.Pending, nil, fault.Wrap(fault.RecordTruncated, fmt.Sprintf("index: %d", index))
		}
		return index, kitty.Present, e.Value[1:], nil
	default:
		return 0, kitty.Pending, nil, fault.Wrap(fault.RecordTruncated, fmt.Sprintf("index: %d  state: 0x%02x", index, e.Value[0]))
	}
}
