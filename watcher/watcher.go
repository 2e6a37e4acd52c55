// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package watcher

import (
	"bytes"
	"context"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/substrate"
)

// Sink - receiver of count observations
type Sink interface {
	CountChanged(count kitty.Count)
	WatchFailed(err error)
}

// CountWatcher - background process following one Option<u64> value
type CountWatcher struct {
	log      *logger.L
	provider substrate.Provider
	key      substrate.StorageKey
	sink     Sink
}

// New - create a count watcher for pallet.item
func New(log *logger.L, provider substrate.Provider, pallet string, item string, sink Sink) (*CountWatcher, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	if nil == provider || nil == sink || "" == pallet || "" == item {
		return nil, fault.MissingParameters
	}

	return &CountWatcher{
		log:      log,
		provider: provider,
		key:      substrate.ValueKey(pallet, item),
		sink:     sink,
	}, nil
}

// Run - background process entry
func (w *CountWatcher) Run(args interface{}, shutdown <-chan struct{}) {
	log := w.log

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Infof("subscribe: %s", w.key.Hex())

	sub, err := w.provider.SubscribeStorage(ctx, []substrate.StorageKey{w.key})
	if nil != err {
		if nil == ctx.Err() {
			log.Errorf("subscribe error: %s", err)
			w.sink.WatchFailed(err)
		}
		return
	}
	defer sub.Unsubscribe()

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop

		case err := <-sub.Err():
			if !fault.IsErrConnection(err) {
				err = fault.Wrap(fault.ConnectionLost, err.Error())
			}
			log.Errorf("subscription lost: %s", err)
			w.sink.WatchFailed(err)
			break loop

		case set := <-sub.Changes():
			w.process(set)
		}
	}
	log.Info("stopped")
}

func (w *CountWatcher) process(set substrate.ChangeSet) {
	for _, change := range set.Changes {
		if !bytes.Equal(w.key, change.Key) {
			w.log.Debugf("block: %s  ignore key: %s", set.Block, change.Key.Hex())
			continue
		}

		count, err := substrate.DecodeOptionU64(change.Value)
		if nil != err {
			w.log.Warnf("block: %s  error: %s", set.Block, err)
			w.sink.WatchFailed(err)
			continue
		}

		w.log.Infof("block: %s  count: %d", set.Block, count)
		w.sink.CountChanged(count)
	}
}
