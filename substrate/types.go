// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package substrate

import (
	"context"
	"encoding/json"
	"fmt"
)

// StorageValue - result of a point lookup
//
// Present is false when the key holds no value
type StorageValue struct {
	Data    []byte
	Present bool
}

// Change - one key of a change set
type Change struct {
	Key   StorageKey
	Value StorageValue
}

// UnmarshalJSON - decode the ["0xkey", "0xvalue" | null] pair
func (c *Change) UnmarshalJSON(data []byte) error {
	var pair []*string
	if err := json.Unmarshal(data, &pair); nil != err {
		return err
	}
	if 2 != len(pair) || nil == pair[0] {
		return fmt.Errorf("change must be a [key, value] pair: %s", data)
	}

	key, err := decodeHex(*pair[0])
	if nil != err {
		return err
	}
	c.Key = key

	if nil == pair[1] {
		c.Value = StorageValue{}
		return nil
	}
	value, err := decodeHex(*pair[1])
	if nil != err {
		return err
	}
	c.Value = StorageValue{
		Data:    value,
		Present: true,
	}
	return nil
}

// ChangeSet - changes observed at a block
type ChangeSet struct {
	Block   string   `json:"block"`
	Changes []Change `json:"changes"`
}

// Subscription - a live storage subscription
type Subscription interface {
	// change sets in the order the node sent them
	Changes() <-chan ChangeSet

	// receives one error when the subscription is lost
	Err() <-chan error

	// release the subscription, safe to call more than once
	Unsubscribe()
}

// Provider - the storage operations of a node
type Provider interface {
	// subscribe to a set of keys, the node sends the current values
	// first and then every change
	SubscribeStorage(ctx context.Context, keys []StorageKey) (Subscription, error)

	// batched point lookup, results are in the same order as keys
	QueryStorageAt(ctx context.Context, keys []StorageKey) ([]StorageValue, error)
}
