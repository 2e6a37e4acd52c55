// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fetcher

import (
	"context"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/substrate"
)

// WatchSink - receiver of owner changes
//
// decodeErr is the first malformed value in the change set, the index
// is reported as absent
type WatchSink interface {
	OwnersChanged(batch uint64, owners []Owner, decodeErr error)
	OwnerWatchFailed(batch uint64, err error)
}

// WatchOwners - follow the owner of every index of a batch
//
// returns immediately, the keys are subscribed in chunks of at most
// batchSize and every change set is passed to the sink until ctx is
// cancelled or the subscription is lost
func (f *Fetcher) WatchOwners(ctx context.Context, batch Batch, sink WatchSink) {
	for low := 0; low < len(batch.Indices); low += f.batchSize {
		high := low + f.batchSize
		if high > len(batch.Indices) {
			high = len(batch.Indices)
		}
		go f.watchOwners(ctx, batch.Id, batch.Indices[low:high], sink)
	}
}

func (f *Fetcher) watchOwners(ctx context.Context, batch uint64, indices []kitty.Index, sink WatchSink) {
	log := f.log

	keys := make([]substrate.StorageKey, len(indices))
	watched := make(map[string]kitty.Index, len(indices))
	for i, index := range indices {
		keys[i] = substrate.MapKeyU64(f.names.Pallet, f.names.Owner, index)
		watched[string(keys[i])] = index
	}

	sub, err := f.provider.SubscribeStorage(ctx, keys)
	if nil != err {
		f.watchFailed(ctx, batch, err, sink)
		return
	}
	defer sub.Unsubscribe()

	log.Debugf("batch: %d  watching owners: %d…%d", batch, indices[0], indices[len(indices)-1])

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case err := <-sub.Err():
			if !fault.IsErrConnection(err) {
				err = fault.Wrap(fault.ConnectionLost, err.Error())
			}
			f.watchFailed(ctx, batch, err, sink)
			break loop

		case set := <-sub.Changes():
			owners, decodeErr := changedOwners(log, batch, set, watched)
			if 0 == len(owners) {
				continue loop
			}
			log.Infof("batch: %d  block: %s  owners changed: %d", batch, set.Block, len(owners))
			sink.OwnersChanged(batch, owners, decodeErr)
		}
	}
	log.Debugf("batch: %d  owner watch stopped", batch)
}

// decode the watched keys of a change set, others are ignored
func changedOwners(log *logger.L, batch uint64, set substrate.ChangeSet, watched map[string]kitty.Index) ([]Owner, error) {
	var decodeErr error
	owners := make([]Owner, 0, len(set.Changes))
	for _, change := range set.Changes {
		index, ok := watched[string(change.Key)]
		if !ok {
			log.Debugf("batch: %d  block: %s  ignore key: %s", batch, set.Block, change.Key.Hex())
			continue
		}

		owner, err := decodeOwner(index, change.Value)
		if nil != err {
			log.Warnf("batch: %d  block: %s  error: %s", batch, set.Block, err)
			if nil == decodeErr {
				decodeErr = err
			}
		}
		owners = append(owners, owner)
	}
	return owners, decodeErr
}

func (f *Fetcher) watchFailed(ctx context.Context, batch uint64, err error, sink WatchSink) {
	// a replaced watch is not reported
	if nil != ctx.Err() {
		f.log.Debugf("batch: %d  owner watch cancelled", batch)
		return
	}
	f.log.Errorf("batch: %d  owner watch error: %s", batch, err)
	sink.OwnerWatchFailed(batch, err)
}
