// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package aggregator

import (
	"context"
	"fmt"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/fetcher"
	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/metrics"
)

// status messages
const (
	StatusConnecting = "connecting"
	StatusReady      = "ready"
)

const eventQueueSize = 100

// DefaultMaximumCount - largest count accepted unless changed by SetMaximumCount
const DefaultMaximumCount = 1 << 20

// Fetcher - starts the lookups and the owner watch for a batch
type Fetcher interface {
	Fetch(ctx context.Context, batch fetcher.Batch, sink fetcher.Sink)
	WatchOwners(ctx context.Context, batch fetcher.Batch, sink fetcher.WatchSink)
}

// Publisher - receives each aggregation and the status
type Publisher interface {
	Publish(count kitty.Count, records []kitty.Record)
	SetStatus(status string)
}

// Snapshot - last-good data for persistence
type Snapshot struct {
	Count    kitty.Count
	Entities []fetcher.Entity
	Owners   []fetcher.Owner
}

// Archive - persistence of last-good data, optional
//
// Save merges the given results into the stored ones and removes any
// stored at or beyond the count
type Archive interface {
	Load() (Snapshot, error)
	Save(snapshot Snapshot) error
}

type countEvent struct {
	count kitty.Count
}

type watchFailedEvent struct {
	err error
}

type entitiesEvent struct {
	batch     uint64
	entities  []fetcher.Entity
	decodeErr error
}

type ownersEvent struct {
	batch     uint64
	owners    []fetcher.Owner
	decodeErr error
}

type fetchFailedEvent struct {
	batch uint64
	kind  fetcher.Kind
	err   error
}

type ownersChangedEvent struct {
	batch     uint64
	owners    []fetcher.Owner
	decodeErr error
}

type ownerWatchFailedEvent struct {
	batch uint64
	err   error
}

// Aggregator - background process owning the aggregation state
type Aggregator struct {
	log       *logger.L
	fetcher   Fetcher
	publisher Publisher
	archive   Archive
	network   byte
	maximum   kitty.Count

	events chan interface{}
	done   chan struct{}

	// only accessed by the Run goroutine
	count      kitty.Count
	observed   bool
	entities   *EntityStore
	owners     *OwnerStore
	batch      uint64
	pending    map[fetcher.Kind]bool
	batchError error
	stopWatch  context.CancelFunc

	// a lookup failed or a subscription was lost so the next count
	// observation refetches even if unchanged
	stale bool
}

// New - create an aggregator, archive may be nil
func New(log *logger.L, f Fetcher, publisher Publisher, archive Archive, network byte) (*Aggregator, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	if nil == f || nil == publisher {
		return nil, fault.MissingParameters
	}

	return &Aggregator{
		log:       log,
		fetcher:   f,
		publisher: publisher,
		archive:   archive,
		network:   network,
		maximum:   DefaultMaximumCount,
		events:    make(chan interface{}, eventQueueSize),
		done:      make(chan struct{}),
		entities:  NewEntityStore(nil),
		owners:    NewOwnerStore(nil),
		pending:   make(map[fetcher.Kind]bool),
	}, nil
}

// SetMaximumCount - counts above this are rejected, call before Run
func (a *Aggregator) SetMaximumCount(maximum kitty.Count) {
	a.maximum = maximum
}

// CountChanged - from the count watcher
func (a *Aggregator) CountChanged(count kitty.Count) {
	a.post(countEvent{count: count})
}

// WatchFailed - from the count watcher
func (a *Aggregator) WatchFailed(err error) {
	a.post(watchFailedEvent{err: err})
}

// EntitiesFetched - from the fetcher
func (a *Aggregator) EntitiesFetched(batch uint64, entities []fetcher.Entity, decodeErr error) {
	a.post(entitiesEvent{batch: batch, entities: entities, decodeErr: decodeErr})
}

// OwnersFetched - from the fetcher
func (a *Aggregator) OwnersFetched(batch uint64, owners []fetcher.Owner, decodeErr error) {
	a.post(ownersEvent{batch: batch, owners: owners, decodeErr: decodeErr})
}

// FetchFailed - from the fetcher
func (a *Aggregator) FetchFailed(batch uint64, kind fetcher.Kind, err error) {
	a.post(fetchFailedEvent{batch: batch, kind: kind, err: err})
}

// OwnersChanged - from the owner watch
func (a *Aggregator) OwnersChanged(batch uint64, owners []fetcher.Owner, decodeErr error) {
	a.post(ownersChangedEvent{batch: batch, owners: owners, decodeErr: decodeErr})
}

// OwnerWatchFailed - from the owner watch
func (a *Aggregator) OwnerWatchFailed(batch uint64, err error) {
	a.post(ownerWatchFailedEvent{batch: batch, err: err})
}

// events arriving after the loop has stopped are dropped
func (a *Aggregator) post(event interface{}) {
	select {
	case a.events <- event:
	case <-a.done:
	}
}

// Run - background process entry
func (a *Aggregator) Run(args interface{}, shutdown <-chan struct{}) {
	log := a.log

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer close(a.done)
	defer a.unwatch()

	a.publisher.SetStatus(StatusConnecting)
	a.restore()

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop
		case event := <-a.events:
			a.handle(ctx, event)
		}
	}
	log.Info("stopped")
}

func (a *Aggregator) handle(ctx context.Context, event interface{}) {
	log := a.log

	switch e := event.(type) {

	case countEvent:
		metrics.Count.Set(float64(e.count))
		if e.count > a.maximum {
			err := fault.Wrap(fault.CountTooLarge, fmt.Sprintf("%d > %d", e.count, a.maximum))
			log.Errorf("count: %s", err)
			metrics.Failed(err)
			a.stale = true
			a.setStatus("count: " + err.Error())
			return
		}
		if a.observed && e.count == a.count {
			if a.stale {
				log.Infof("count: %d  unchanged, refetch", e.count)
				a.dispatch(ctx)
			} else {
				log.Debugf("count: %d  unchanged", e.count)
			}
			return
		}
		log.Infof("count: %d -> %d", a.count, e.count)

		a.observed = true
		a.count = e.count
		a.entities = a.entities.Truncate(e.count)
		a.owners = a.owners.Truncate(e.count)
		a.save(Snapshot{Count: a.count})
		a.recompute()
		a.dispatch(ctx)

	case watchFailedEvent:
		a.stale = true
		metrics.Failed(e.err)
		if fault.IsErrDecode(e.err) {
			a.setStatus("count: " + e.err.Error())
		} else {
			a.setStatus("count subscription: " + e.err.Error())
		}

	case entitiesEvent:
		next, discarded := a.entities.Update(e.entities, a.count)
		if discarded > 0 {
			log.Debugf("batch: %d  entities discarded: %d", e.batch, discarded)
			metrics.Discarded.Add(float64(discarded))
		}
		a.entities = next
		a.save(Snapshot{Count: a.count, Entities: e.entities})
		a.recompute()
		a.completed(e.batch, fetcher.Entities, e.decodeErr)

	case ownersEvent:
		next, discarded := a.owners.Update(e.owners, a.count)
		if discarded > 0 {
			log.Debugf("batch: %d  owners discarded: %d", e.batch, discarded)
			metrics.Discarded.Add(float64(discarded))
		}
		a.owners = next
		a.save(Snapshot{Count: a.count, Owners: e.owners})
		a.recompute()
		a.completed(e.batch, fetcher.Owners, e.decodeErr)

	case ownersChangedEvent:
		// a replaced watch may still deliver before it stops
		if e.batch != a.batch {
			log.Debugf("batch: %d  superseded owner change ignored", e.batch)
			return
		}
		next, discarded := a.owners.Update(e.owners, a.count)
		if discarded > 0 {
			metrics.Discarded.Add(float64(discarded))
		}
		a.owners = next
		a.save(Snapshot{Count: a.count, Owners: e.owners})
		a.recompute()
		if nil != e.decodeErr {
			log.Warnf("batch: %d  owner change: %s", e.batch, e.decodeErr)
			metrics.Failed(e.decodeErr)
			a.setStatus(e.decodeErr.Error())
		}

	case ownerWatchFailedEvent:
		if e.batch != a.batch {
			return
		}
		a.stale = true
		metrics.Failed(e.err)
		a.setStatus("owner subscription: " + e.err.Error())

	case fetchFailedEvent:
		// stores keep their previous values
		if e.batch == a.batch {
			a.stale = true
		}
		a.completed(e.batch, e.kind, fmt.Errorf("%s lookup: %s", e.kind, e.err))
		metrics.Failed(e.err)

	default:
		log.Criticalf("unhandled event: %T", event)
		logger.Panicf("aggregator: unhandled event: %T", event)
	}
}

// start a lookup of the whole current range and replace the owner
// watch with one covering the same range
func (a *Aggregator) dispatch(ctx context.Context) {
	a.batch += 1
	a.stale = false
	a.pending[fetcher.Entities] = true
	a.pending[fetcher.Owners] = true
	a.batchError = nil

	batch := fetcher.Batch{
		Id:      a.batch,
		Indices: kitty.Range(a.count),
	}
	a.log.Infof("batch: %d  indices: %d", batch.Id, len(batch.Indices))
	a.setStatus(fmt.Sprintf("loading %d kitties", a.count))

	a.unwatch()
	a.fetcher.Fetch(ctx, batch, a)

	if len(batch.Indices) > 0 {
		watchCtx, cancel := context.WithCancel(ctx)
		a.stopWatch = cancel
		a.fetcher.WatchOwners(watchCtx, batch, a)
	}
}

func (a *Aggregator) unwatch() {
	if nil != a.stopWatch {
		a.stopWatch()
		a.stopWatch = nil
	}
}

// track the halves of the latest batch, status is ready once both
// completed without error
func (a *Aggregator) completed(batch uint64, kind fetcher.Kind, err error) {
	if nil != err {
		a.log.Warnf("batch: %d  %s", batch, err)
		if fault.IsErrDecode(err) {
			metrics.Failed(err)
		}
	}
	// superseded batches do not affect the status
	if batch != a.batch {
		return
	}

	if nil != err && nil == a.batchError {
		a.batchError = err
	}
	a.pending[kind] = false

	if nil != a.batchError {
		a.setStatus(a.batchError.Error())
	} else if !a.pending[fetcher.Entities] && !a.pending[fetcher.Owners] {
		a.setStatus(StatusReady)
	}
}

func (a *Aggregator) recompute() {
	records := Aggregate(a.count, a.entities, a.owners, a.network)
	a.publisher.Publish(a.count, records)
	metrics.Publishes.Inc()
}

func (a *Aggregator) setStatus(status string) {
	a.log.Debugf("status: %s", status)
	a.publisher.SetStatus(status)
}

// store the count and the results that just changed
func (a *Aggregator) save(changed Snapshot) {
	if nil == a.archive {
		return
	}
	err := a.archive.Save(changed)
	if nil != err {
		a.log.Errorf("save error: %s", err)
	}
}

// load the last-good data so clients have a view before the node
// answers, the first count observation still triggers a lookup
func (a *Aggregator) restore() {
	if nil == a.archive {
		return
	}

	snapshot, err := a.archive.Load()
	if nil != err {
		if fault.IsErrNotFound(err) {
			a.log.Info("no saved data")
		} else {
			a.log.Errorf("load error: %s", err)
		}
		return
	}
	if snapshot.Count > a.maximum {
		a.log.Errorf("saved count: %d  above maximum: %d", snapshot.Count, a.maximum)
		return
	}

	a.count = snapshot.Count
	a.entities, _ = NewEntityStore(nil).Update(snapshot.Entities, a.count)
	a.owners, _ = NewOwnerStore(nil).Update(snapshot.Owners, a.count)
	a.log.Infof("restored count: %d  entities: %d  owners: %d", a.count, a.entities.Len(), a.owners.Len())

	a.recompute()
}
