// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package substrate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/gorilla/websocket"

	"github.com/bitmark-inc/kittywatch/fault"
)

const (
	jsonRPCVersion = "2.0"

	subscribeStorageMethod   = "state_subscribeStorage"
	unsubscribeStorageMethod = "state_unsubscribeStorage"
	queryStorageAtMethod     = "state_queryStorageAt"

	subscriptionQueueSize = 16
	writeTimeout          = 10 * time.Second
	unsubscribeTimeout    = 5 * time.Second
)

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Id      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// responses and notifications arrive on the same connection
type response struct {
	JSONRPC string              `json:"jsonrpc"`
	Id      *uint64             `json:"id"`
	Result  json.RawMessage     `json:"result"`
	Error   *rpcError           `json:"error"`
	Method  string              `json:"method"`
	Params  *notificationParams `json:"params"`
}

type notificationParams struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

type pendingCall struct {
	reply        chan response
	subscription *subscription
}

// Client - a websocket connection to one node
type Client struct {
	sync.Mutex
	log *logger.L

	conn      *websocket.Conn
	writeLock sync.Mutex

	nextId        uint64
	pending       map[uint64]*pendingCall
	subscriptions map[string]*subscription

	closed bool
	err    error
	done   chan struct{}
}

// Dial - connect to a node, nodeURL is ws:// or wss://
func Dial(ctx context.Context, nodeURL string, log *logger.L) (*Client, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}

	u, err := url.Parse(nodeURL)
	if nil != err || ("ws" != u.Scheme && "wss" != u.Scheme) {
		return nil, fault.InvalidNodeURL
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, nodeURL, nil)
	if nil != err {
		return nil, fault.Wrap(fault.ConnectionLost, err.Error())
	}

	log.Infof("connected to: %s", nodeURL)

	c := &Client{
		log:           log,
		conn:          conn,
		pending:       make(map[uint64]*pendingCall),
		subscriptions: make(map[string]*subscription),
		done:          make(chan struct{}),
	}
	go c.reader()
	return c, nil
}

// Done - closed when the connection is lost or closed
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close - drop the connection, all pending calls and subscriptions
// receive fault.ConnectionClosed
func (c *Client) Close() error {
	c.shutdown(fault.ConnectionClosed)
	return nil
}

// Call - a single JSON-RPC request
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	raw, err := c.roundTrip(ctx, method, params, nil)
	if nil != err {
		return err
	}
	if nil == result {
		return nil
	}
	if err := json.Unmarshal(raw, result); nil != err {
		return fault.Wrap(fault.ResponseMismatch, fmt.Sprintf("%s: %s", method, err))
	}
	return nil
}

// QueryStorageAt - batched lookup at the best block
func (c *Client) QueryStorageAt(ctx context.Context, keys []StorageKey) ([]StorageValue, error) {
	if 0 == len(keys) {
		return []StorageValue{}, nil
	}

	var sets []ChangeSet
	err := c.Call(ctx, queryStorageAtMethod, []interface{}{keys}, &sets)
	if nil != err {
		return nil, err
	}

	// the node may group or reorder the keys so match them up by value
	found := make(map[string]StorageValue, len(keys))
	for _, set := range sets {
		for _, change := range set.Changes {
			found[string(change.Key)] = change.Value
		}
	}

	values := make([]StorageValue, len(keys))
	for i, key := range keys {
		values[i] = found[string(key)] // missing is the zero value: absent
	}
	return values, nil
}

// SubscribeStorage - subscribe to changes of a set of keys
func (c *Client) SubscribeStorage(ctx context.Context, keys []StorageKey) (Subscription, error) {
	sub := &subscription{
		client:  c,
		changes: make(chan ChangeSet, subscriptionQueueSize),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}

	_, err := c.roundTrip(ctx, subscribeStorageMethod, []interface{}{keys}, sub)
	if nil != err {
		// the reply may have registered the subscription before the
		// caller gave up
		sub.Unsubscribe()
		return nil, fault.Wrap(fault.SubscriptionFailed, err.Error())
	}
	return sub, nil
}

func (c *Client) roundTrip(ctx context.Context, method string, params interface{}, sub *subscription) (json.RawMessage, error) {
	call := &pendingCall{
		reply:        make(chan response, 1),
		subscription: sub,
	}

	c.Lock()
	if c.closed {
		err := c.err
		c.Unlock()
		return nil, err
	}
	c.nextId += 1
	id := c.nextId
	c.pending[id] = call
	c.Unlock()

	err := c.send(request{
		JSONRPC: jsonRPCVersion,
		Id:      id,
		Method:  method,
		Params:  params,
	})
	if nil != err {
		c.forget(id)
		c.shutdown(fault.Wrap(fault.ConnectionLost, err.Error()))
		return nil, fault.Wrap(fault.ConnectionLost, err.Error())
	}

	select {
	case r := <-call.reply:
		return result(method, r)

	case <-c.done:
		// a reply read just before the connection dropped still counts
		select {
		case r := <-call.reply:
			return result(method, r)
		default:
			return nil, c.closeError()
		}

	case <-ctx.Done():
		c.forget(id)
		if context.DeadlineExceeded == ctx.Err() {
			return nil, fault.Wrap(fault.RequestTimedOut, method)
		}
		return nil, ctx.Err()
	}
}

func result(method string, r response) (json.RawMessage, error) {
	if nil != r.Error {
		return nil, fault.Wrap(fault.RequestFailed, fmt.Sprintf("%s: %d %s", method, r.Error.Code, r.Error.Message))
	}
	return r.Result, nil
}

func (c *Client) send(r request) error {
	buffer, err := json.Marshal(r)
	if nil != err {
		return err
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, buffer)
}

func (c *Client) forget(id uint64) {
	c.Lock()
	delete(c.pending, id)
	c.Unlock()
}

func (c *Client) closeError() error {
	c.Lock()
	defer c.Unlock()
	return c.err
}

// runs until the connection fails
func (c *Client) reader() {
	for {
		_, data, err := c.conn.ReadMessage()
		if nil != err {
			c.shutdown(fault.Wrap(fault.ConnectionLost, err.Error()))
			return
		}

		var r response
		if err := json.Unmarshal(data, &r); nil != err {
			c.log.Warnf("discard malformed message: %s", err)
			continue
		}

		if nil != r.Id {
			c.deliver(r)
		} else if "" != r.Method && nil != r.Params {
			c.notify(r.Params)
		} else {
			c.log.Debugf("discard message: %s", data)
		}
	}
}

func (c *Client) deliver(r response) {
	c.Lock()
	call, ok := c.pending[*r.Id]
	delete(c.pending, *r.Id)

	// register before any notification for it can be read
	if ok && nil != call.subscription && nil == r.Error {
		id := ""
		if err := json.Unmarshal(r.Result, &id); nil == err && "" != id {
			call.subscription.id = id
			c.subscriptions[id] = call.subscription
		} else {
			r.Error = &rpcError{Message: fmt.Sprintf("invalid subscription id: %s", r.Result)}
		}
	}
	c.Unlock()

	if !ok {
		c.log.Debugf("reply for unknown id: %d", *r.Id)
		return
	}
	call.reply <- r
}

func (c *Client) notify(p *notificationParams) {
	c.Lock()
	sub, ok := c.subscriptions[p.Subscription]
	c.Unlock()

	if !ok {
		c.log.Debugf("notification for unknown subscription: %q", p.Subscription)
		return
	}

	var set ChangeSet
	if err := json.Unmarshal(p.Result, &set); nil != err {
		c.log.Warnf("subscription: %q  malformed change set: %s", p.Subscription, err)
		return
	}

	select {
	case sub.changes <- set:
	case <-sub.done:
	case <-c.done:
	}
}

func (c *Client) shutdown(err error) {
	c.Lock()
	if c.closed {
		c.Unlock()
		return
	}
	c.closed = true
	c.err = err
	subscriptions := c.subscriptions
	c.subscriptions = make(map[string]*subscription)
	c.pending = make(map[uint64]*pendingCall)
	close(c.done)
	c.Unlock()

	if fault.ConnectionClosed != err {
		c.log.Errorf("connection: %s", err)
	}

	for _, sub := range subscriptions {
		select {
		case sub.errors <- err:
		default:
		}
	}
	_ = c.conn.Close()
}

// remove a subscription and tell the node
func (c *Client) drop(sub *subscription) {
	c.Lock()
	id := sub.id
	if "" != id {
		delete(c.subscriptions, id)
	}
	closed := c.closed
	c.Unlock()

	if "" == id || closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
	defer cancel()
	if err := c.Call(ctx, unsubscribeStorageMethod, []interface{}{id}, nil); nil != err {
		c.log.Warnf("unsubscribe: %q  error: %s", id, err)
	}
}

type subscription struct {
	client  *Client
	id      string
	changes chan ChangeSet
	errors  chan error
	done    chan struct{}
	once    sync.Once
}

func (s *subscription) Changes() <-chan ChangeSet {
	return s.changes
}

func (s *subscription) Err() <-chan error {
	return s.errors
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.client.drop(s)
	})
}
