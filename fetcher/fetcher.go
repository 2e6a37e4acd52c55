// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/sync/errgroup"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/metrics"
	"github.com/bitmark-inc/kittywatch/substrate"
)

// Kind - which map a lookup covers
type Kind int

// lookup kinds
const (
	Entities Kind = iota
	Owners
)

func (k Kind) String() string {
	switch k {
	case Entities:
		return "entities"
	case Owners:
		return "owners"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Batch - one request for a range of indices
type Batch struct {
	Id      uint64
	Indices []kitty.Index
}

// Entity - lookup result for one dna
type Entity struct {
	Index kitty.Index
	State kitty.State
	DNA   kitty.DNA
}

// Owner - lookup result for one owner
type Owner struct {
	Index   kitty.Index
	State   kitty.State
	Account substrate.AccountID
}

// Sink - receiver of completions
//
// decodeErr is the first malformed value in the result, the index
// is reported as absent
type Sink interface {
	EntitiesFetched(batch uint64, entities []Entity, decodeErr error)
	OwnersFetched(batch uint64, owners []Owner, decodeErr error)
	FetchFailed(batch uint64, kind Kind, err error)
}

// Names - storage names used to build the keys
type Names struct {
	Pallet string
	DNA    string
	Owner  string
}

// Fetcher - issues batched lookups
type Fetcher struct {
	log       *logger.L
	provider  substrate.Provider
	names     Names
	batchSize int
	parallel  int
	timeout   time.Duration
}

// New - create a fetcher
//
// batchSize is the maximum number of keys in one request and parallel
// the maximum number of requests in flight for each half of a batch
func New(log *logger.L, provider substrate.Provider, names Names, batchSize int, parallel int, timeout time.Duration) (*Fetcher, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	if nil == provider || "" == names.Pallet || "" == names.DNA || "" == names.Owner {
		return nil, fault.MissingParameters
	}
	if batchSize <= 0 || parallel <= 0 {
		return nil, fault.InvalidBatchSize
	}

	return &Fetcher{
		log:       log,
		provider:  provider,
		names:     names,
		batchSize: batchSize,
		parallel:  parallel,
		timeout:   timeout,
	}, nil
}

// Fetch - start both lookups for a batch
//
// returns immediately, the sink is called once for each half unless
// ctx is cancelled first
func (f *Fetcher) Fetch(ctx context.Context, batch Batch, sink Sink) {
	go f.fetchEntities(ctx, batch, sink)
	go f.fetchOwners(ctx, batch, sink)
}

func (f *Fetcher) fetchEntities(ctx context.Context, batch Batch, sink Sink) {
	values, err := f.lookup(ctx, batch, Entities, f.names.DNA)
	if nil != err {
		f.fail(ctx, batch, Entities, err, sink)
		return
	}

	var decodeErr error
	entities := make([]Entity, len(batch.Indices))
	for i, index := range batch.Indices {
		entities[i].Index = index
		entities[i].State = kitty.Absent

		ok, err := substrate.DecodeOptionFixed(values[i], entities[i].DNA[:], fault.DNADecodeFailed)
		if nil != err {
			f.log.Warnf("batch: %d  index: %d  error: %s", batch.Id, index, err)
			if nil == decodeErr {
				decodeErr = fault.Wrap(err, fmt.Sprintf("index: %d", index))
			}
			continue
		}
		if ok {
			entities[i].State = kitty.Present
		}
	}

	f.log.Debugf("batch: %d  entities: %d", batch.Id, len(entities))
	sink.EntitiesFetched(batch.Id, entities, decodeErr)
}

func (f *Fetcher) fetchOwners(ctx context.Context, batch Batch, sink Sink) {
	values, err := f.lookup(ctx, batch, Owners, f.names.Owner)
	if nil != err {
		f.fail(ctx, batch, Owners, err, sink)
		return
	}

	var decodeErr error
	owners := make([]Owner, len(batch.Indices))
	for i, index := range batch.Indices {
		owner, err := decodeOwner(index, values[i])
		if nil != err {
			f.log.Warnf("batch: %d  index: %d  error: %s", batch.Id, index, err)
			if nil == decodeErr {
				decodeErr = err
			}
		}
		owners[i] = owner
	}

	f.log.Debugf("batch: %d  owners: %d", batch.Id, len(owners))
	sink.OwnersFetched(batch.Id, owners, decodeErr)
}

// malformed values are reported as absent with the error
func decodeOwner(index kitty.Index, value substrate.StorageValue) (Owner, error) {
	owner := Owner{
		Index: index,
		State: kitty.Absent,
	}
	ok, err := substrate.DecodeOptionFixed(value, owner.Account[:], fault.OwnerDecodeFailed)
	if nil != err {
		return owner, fault.Wrap(err, fmt.Sprintf("index: %d", index))
	}
	if ok {
		owner.State = kitty.Present
	}
	return owner, nil
}

func (f *Fetcher) fail(ctx context.Context, batch Batch, kind Kind, err error, sink Sink) {
	// cancelled batches are not reported
	if nil != ctx.Err() {
		f.log.Debugf("batch: %d  %s cancelled", batch.Id, kind)
		return
	}
	if !fault.IsErrTransport(err) {
		err = fault.Wrap(fault.RequestFailed, err.Error())
	}
	f.log.Errorf("batch: %d  %s error: %s", batch.Id, kind, err)
	sink.FetchFailed(batch.Id, kind, err)
}

// lookup all the keys of one map, splitting into chunks of at most
// batchSize keys with at most parallel chunks in flight
func (f *Fetcher) lookup(ctx context.Context, batch Batch, kind Kind, item string) ([]substrate.StorageValue, error) {
	start := time.Now()

	keys := make([]substrate.StorageKey, len(batch.Indices))
	for i, index := range batch.Indices {
		keys[i] = substrate.MapKeyU64(f.names.Pallet, item, index)
	}
	values := make([]substrate.StorageValue, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallel)

	for low := 0; low < len(keys); low += f.batchSize {
		high := low + f.batchSize
		if high > len(keys) {
			high = len(keys)
		}

		low := low
		g.Go(func() error {
			rctx := gctx
			if f.timeout > 0 {
				var cancel context.CancelFunc
				rctx, cancel = context.WithTimeout(gctx, f.timeout)
				defer cancel()
			}

			chunk, err := f.provider.QueryStorageAt(rctx, keys[low:high])
			if nil != err {
				return err
			}
			if len(chunk) != high-low {
				return fault.Wrap(fault.ResponseMismatch, fmt.Sprintf("expected %d values, got %d", high-low, len(chunk)))
			}
			copy(values[low:high], chunk)
			return nil
		})
	}

	err := g.Wait()

	metrics.BatchDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	if nil != err {
		metrics.Batches.WithLabelValues(kind.String(), "failed").Inc()
		return nil, err
	}
	metrics.Batches.WithLabelValues(kind.String(), "ok").Inc()
	return values, nil
}
