// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/substrate"
)

const (
	minimumRedialDelay = 1 * time.Second
	maximumRedialDelay = 60 * time.Second
)

// Connection - a node connection that can be followed
type Connection interface {
	substrate.Provider
	Done() <-chan struct{}
	Close() error
}

// Dialer - open a new connection
type Dialer func(ctx context.Context) (Connection, error)

// NodeDialer - dial a websocket node
func NodeDialer(nodeURL string, log *logger.L) Dialer {
	return func(ctx context.Context) (Connection, error) {
		client, err := substrate.Dial(ctx, nodeURL, log)
		if nil != err {
			return nil, err
		}
		return client, nil
	}
}

// Connector - background process keeping one node connection open
// with a count watcher on it
//
// it is also the provider for lookups, which fail with ConnectionLost
// while no connection is open
type Connector struct {
	sync.RWMutex

	log     *logger.L
	dial    Dialer
	timeout time.Duration
	pallet  string
	item    string
	sink    Sink

	connection Connection

	minimumDelay time.Duration
	maximumDelay time.Duration
}

// NewConnector - timeout limits each dial
//
// the sink must be set before Run, counts go to an aggregator that
// itself looks up through the connector
func NewConnector(log *logger.L, dial Dialer, timeout time.Duration, pallet string, item string) (*Connector, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	if nil == dial || "" == pallet || "" == item {
		return nil, fault.MissingParameters
	}

	return &Connector{
		log:          log,
		dial:         dial,
		timeout:      timeout,
		pallet:       pallet,
		item:         item,
		minimumDelay: minimumRedialDelay,
		maximumDelay: maximumRedialDelay,
	}, nil
}

// SetSink - receiver of counts and failures
func (c *Connector) SetSink(sink Sink) {
	c.Lock()
	c.sink = sink
	c.Unlock()
}

// SubscribeStorage - on the current connection
func (c *Connector) SubscribeStorage(ctx context.Context, keys []substrate.StorageKey) (substrate.Subscription, error) {
	connection := c.current()
	if nil == connection {
		return nil, fault.Wrap(fault.ConnectionLost, "not connected")
	}
	return connection.SubscribeStorage(ctx, keys)
}

// QueryStorageAt - on the current connection
func (c *Connector) QueryStorageAt(ctx context.Context, keys []substrate.StorageKey) ([]substrate.StorageValue, error) {
	connection := c.current()
	if nil == connection {
		return nil, fault.Wrap(fault.ConnectionLost, "not connected")
	}
	return connection.QueryStorageAt(ctx, keys)
}

func (c *Connector) current() Connection {
	c.RLock()
	defer c.RUnlock()
	return c.connection
}

func (c *Connector) set(connection Connection) {
	c.Lock()
	c.connection = connection
	c.Unlock()
}

// Run - background process entry
func (c *Connector) Run(args interface{}, shutdown <-chan struct{}) {
	log := c.log

	c.RLock()
	sink := c.sink
	c.RUnlock()
	if nil == sink {
		logger.Panicf("connector: sink not set")
	}

	delay := c.minimumDelay

loop:
	for {
		connection, err := c.connect(shutdown)
		if nil != err {
			log.Errorf("dial error: %s", err)
			if !fault.IsErrConnection(err) {
				err = fault.Wrap(fault.ConnectionLost, err.Error())
			}
			sink.WatchFailed(err)
		} else {
			delay = c.minimumDelay

			c.set(connection)
			stopped := c.follow(connection, sink, shutdown)
			c.set(nil)
			_ = connection.Close()

			if stopped {
				break loop
			}
		}

		log.Infof("redial in: %s", delay)
		select {
		case <-shutdown:
			break loop
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.maximumDelay {
			delay = c.maximumDelay
		}
	}
	log.Info("stopped")
}

// dial giving up on shutdown
func (c *Connector) connect(shutdown <-chan struct{}) (Connection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	return c.dial(ctx)
}

// run a count watcher until the connection drops, true on shutdown
func (c *Connector) follow(connection Connection, sink Sink, shutdown <-chan struct{}) bool {
	w, err := New(c.log, connection, c.pallet, c.item, sink)
	logger.PanicIfError("connector: count watcher", err)

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		w.Run(nil, stop)
		close(stopped)
	}()

	select {
	case <-shutdown:
		close(stop)
		<-stopped
		return true

	case <-connection.Done():
		close(stop)
		<-stopped
		sink.WatchFailed(fault.Wrap(fault.ConnectionLost, "connection closed"))
		return false

	case <-stopped:
		// the watcher reported its own failure
		return false
	}
}
