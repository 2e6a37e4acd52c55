// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/kittywatch/rpc/kitties"
)

// ListData - data for a list request
type ListData struct {
	Start uint64
	Count int
}

// List - obtain a page of kitties
func (client *Client) List(listConfig *ListData) (*kitties.ListReply, error) {

	listArgs := kitties.ListArguments{
		Start: listConfig.Start,
		Count: listConfig.Count,
	}

	client.printJson("List Request", listArgs)

	reply := &kitties.ListReply{}
	err := client.client.Call("Kitties.List", listArgs, reply)
	if nil != err {
		return nil, err
	}

	client.printJson("List Reply", reply)

	return reply, nil
}

// MineData - data for an owner filtered request
type MineData struct {
	Owner string // blank for the server default
	Start uint64
	Count int
}

// Mine - obtain a page of kitties owned by one account
func (client *Client) Mine(mineConfig *MineData) (*kitties.MineReply, error) {

	mineArgs := kitties.MineArguments{
		Owner: mineConfig.Owner,
		Start: mineConfig.Start,
		Count: mineConfig.Count,
	}

	client.printJson("Mine Request", mineArgs)

	reply := &kitties.MineReply{}
	err := client.client.Call("Kitties.Mine", mineArgs, reply)
	if nil != err {
		return nil, err
	}

	client.printJson("Mine Reply", reply)

	return reply, nil
}

// Status - the status message and view summary
func (client *Client) Status() (*kitties.StatusReply, error) {
	reply := &kitties.StatusReply{}
	if err := client.client.Call("Kitties.Status", kitties.StatusArguments{}, reply); err != nil {
		return nil, err
	}

	client.printJson("Status Reply", reply)

	return reply, nil
}

// Create - request one new kitty
func (client *Client) Create() (*kitties.CreateReply, error) {
	reply := &kitties.CreateReply{}
	if err := client.client.Call("Kitties.Create", kitties.CreateArguments{}, reply); err != nil {
		return nil, err
	}

	client.printJson("Create Reply", reply)

	return reply, nil
}
