// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package substrate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/fixtures"
	"github.com/bitmark-inc/kittywatch/substrate"
)

const subscriptionId = "sub-1"

type nodeRequest struct {
	Id     uint64            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// a minimal node: values maps hex key to hex value, a nil value is
// sent as null and a missing key is left out of the reply
type fakeNode struct {
	values             map[string]*string
	dropAfterSubscribe bool
	unsubscribed       chan string
	upgrader           websocket.Upgrader
}

func newFakeNode(values map[string]*string) *fakeNode {
	return &fakeNode{
		values:       values,
		unsubscribed: make(chan string, 1),
	}
}

func (n *fakeNode) changes(keys []string) [][]interface{} {
	changes := [][]interface{}{}

	// reverse order so the client has to match keys
	for i := len(keys) - 1; i >= 0; i -= 1 {
		value, ok := n.values[keys[i]]
		if !ok {
			continue
		}
		if nil == value {
			changes = append(changes, []interface{}{keys[i], nil})
		} else {
			changes = append(changes, []interface{}{keys[i], *value})
		}
	}
	return changes
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if nil != err {
		return
	}
	defer conn.Close()

	for {
		var req nodeRequest
		if err := conn.ReadJSON(&req); nil != err {
			return
		}

		switch req.Method {
		case "state_queryStorageAt":
			var keys []string
			_ = json.Unmarshal(req.Params[0], &keys)
			_ = conn.WriteJSON(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      req.Id,
				"result": []interface{}{
					map[string]interface{}{
						"block":   "0x01",
						"changes": n.changes(keys),
					},
				},
			})

		case "state_subscribeStorage":
			var keys []string
			_ = json.Unmarshal(req.Params[0], &keys)
			_ = conn.WriteJSON(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      req.Id,
				"result":  subscriptionId,
			})
			_ = conn.WriteJSON(map[string]interface{}{
				"jsonrpc": "2.0",
				"method":  "state_storage",
				"params": map[string]interface{}{
					"subscription": subscriptionId,
					"result": map[string]interface{}{
						"block":   "0x02",
						"changes": n.changes(keys),
					},
				},
			})
			if n.dropAfterSubscribe {
				return
			}

		case "state_unsubscribeStorage":
			var id string
			_ = json.Unmarshal(req.Params[0], &id)
			n.unsubscribed <- id
			_ = conn.WriteJSON(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      req.Id,
				"result":  true,
			})

		case "slow":
			// never answered

		default:
			_ = conn.WriteJSON(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      req.Id,
				"error": map[string]interface{}{
					"code":    -32601,
					"message": "Method not found",
				},
			})
		}
	}
}

func hexValue(s string) *string {
	return &s
}

func setupClient(t *testing.T, node *fakeNode) (*substrate.Client, func()) {
	fixtures.SetupTestLogger()

	server := httptest.NewServer(node)
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := substrate.Dial(ctx, url, logger.New(fixtures.LogCategory))
	if nil != err {
		server.Close()
		fixtures.TeardownTestLogger()
		t.Fatalf("dial error: %s", err)
	}

	return client, func() {
		_ = client.Close()
		server.Close()
		fixtures.TeardownTestLogger()
	}
}

func TestDialInvalidURL(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	_, err := substrate.Dial(context.Background(), "http://127.0.0.1:9944", logger.New(fixtures.LogCategory))
	assert.Equal(t, fault.InvalidNodeURL, err, "wrong error")

	_, err = substrate.Dial(context.Background(), "ws://127.0.0.1:9944", nil)
	assert.Equal(t, fault.InvalidLoggerChannel, err, "wrong error")
}

func TestQueryStorageAt(t *testing.T) {
	k0 := substrate.MapKeyU64("KittiesModule", "Kitties", 0)
	k1 := substrate.MapKeyU64("KittiesModule", "Kitties", 1)
	k2 := substrate.MapKeyU64("KittiesModule", "Kitties", 2)

	node := newFakeNode(map[string]*string{
		k0.Hex(): hexValue("0x0102"),
		k1.Hex(): nil,
	})
	client, teardown := setupClient(t, node)
	defer teardown()

	values, err := client.QueryStorageAt(context.Background(), []substrate.StorageKey{k0, k1, k2})
	assert.Nil(t, err, "query error")
	assert.Equal(t, 3, len(values), "wrong value count")
	assert.Equal(t, substrate.StorageValue{Data: []byte{1, 2}, Present: true}, values[0], "wrong value 0")
	assert.False(t, values[1].Present, "null value present")
	assert.False(t, values[2].Present, "missing value present")
}

func TestQueryStorageAtNoKeys(t *testing.T) {
	client, teardown := setupClient(t, newFakeNode(nil))
	defer teardown()

	values, err := client.QueryStorageAt(context.Background(), nil)
	assert.Nil(t, err, "query error")
	assert.Equal(t, 0, len(values), "values returned")
}

func TestCallError(t *testing.T) {
	client, teardown := setupClient(t, newFakeNode(nil))
	defer teardown()

	err := client.Call(context.Background(), "bogus_method", []interface{}{}, nil)
	assert.True(t, fault.IsErrTransport(err), "wrong error class: %v", err)
	assert.Contains(t, err.Error(), "Method not found", "missing node message")
}

func TestCallTimeout(t *testing.T) {
	client, teardown := setupClient(t, newFakeNode(nil))
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Call(ctx, "slow", []interface{}{}, nil)
	assert.True(t, fault.IsErrTransport(err), "wrong error class: %v", err)
	assert.Contains(t, err.Error(), fault.RequestTimedOut.Error(), "not a timeout")
}

func TestSubscribeStorage(t *testing.T) {
	key := substrate.ValueKey("KittiesModule", "KittiesCount")
	node := newFakeNode(map[string]*string{
		key.Hex(): hexValue("0x010300000000000000"),
	})
	client, teardown := setupClient(t, node)
	defer teardown()

	sub, err := client.SubscribeStorage(context.Background(), []substrate.StorageKey{key})
	assert.Nil(t, err, "subscribe error")

	select {
	case set := <-sub.Changes():
		assert.Equal(t, "0x02", set.Block, "wrong block")
		assert.Equal(t, 1, len(set.Changes), "wrong change count")
		assert.Equal(t, key, set.Changes[0].Key, "wrong key")
		count, err := substrate.DecodeOptionU64(set.Changes[0].Value)
		assert.Nil(t, err, "decode error")
		assert.Equal(t, uint64(3), count, "wrong count")
	case <-time.After(5 * time.Second):
		t.Fatal("no change set received")
	}

	sub.Unsubscribe()
	sub.Unsubscribe()

	select {
	case id := <-node.unsubscribed:
		assert.Equal(t, subscriptionId, id, "wrong subscription unsubscribed")
	case <-time.After(5 * time.Second):
		t.Fatal("node did not see unsubscribe")
	}
}

func TestSubscriptionConnectionLost(t *testing.T) {
	key := substrate.ValueKey("KittiesModule", "KittiesCount")
	node := newFakeNode(map[string]*string{
		key.Hex(): hexValue("0x00"),
	})
	node.dropAfterSubscribe = true
	client, teardown := setupClient(t, node)
	defer teardown()

	sub, err := client.SubscribeStorage(context.Background(), []substrate.StorageKey{key})
	assert.Nil(t, err, "subscribe error")

	select {
	case <-sub.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change set received")
	}

	select {
	case err := <-sub.Err():
		assert.True(t, fault.IsErrConnection(err), "wrong error class: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("connection loss not reported")
	}

	select {
	case <-client.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client not done")
	}

	err = client.Call(context.Background(), "state_queryStorageAt", []interface{}{}, nil)
	assert.True(t, fault.IsErrConnection(err), "call after loss: %v", err)
}

func TestClose(t *testing.T) {
	client, teardown := setupClient(t, newFakeNode(nil))
	defer teardown()

	assert.Nil(t, client.Close(), "close error")

	err := client.Call(context.Background(), "state_queryStorageAt", []interface{}{}, nil)
	assert.Equal(t, fault.ConnectionClosed, err, "wrong error")
}
