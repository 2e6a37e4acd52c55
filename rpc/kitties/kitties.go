// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kitties

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/publish"
	"github.com/bitmark-inc/kittywatch/rpc/ratelimit"
	"github.com/bitmark-inc/kittywatch/substrate"
)

// Kitties
// -------

const (
	MaximumListCount = 100

	rateLimitKitties  = 200
	rateBurstKitties  = 100
	rateLimitCreate   = 1
	rateBurstCreate   = 2
	createCallTimeout = 2 * time.Minute
)

// Source - the published view and status
type Source interface {
	View() kitty.View
	Status() publish.Status
}

// Creator - submits one create request to the chain
type Creator interface {
	Create(ctx context.Context) error
}

// DefaultOwner - account used by Mine when the caller gives none,
// changed when the configuration file is edited
type DefaultOwner struct {
	sync.RWMutex
	address string
}

// Get - current default
func (d *DefaultOwner) Get() string {
	d.RLock()
	defer d.RUnlock()
	return d.address
}

// Set - replace the default
func (d *DefaultOwner) Set(address string) {
	d.Lock()
	d.address = address
	d.Unlock()
}

// Kitties - type for the RPC
type Kitties struct {
	Log           *logger.L
	Limiter       *rate.Limiter
	CreateLimiter *rate.Limiter
	Source        Source
	Creator       Creator
	Owner         *DefaultOwner
	Network       byte
}

// New - creator may be nil if creation is not configured
func New(log *logger.L, source Source, creator Creator, owner *DefaultOwner, network byte) *Kitties {
	return &Kitties{
		Log:           log,
		Limiter:       rate.NewLimiter(rateLimitKitties, rateBurstKitties),
		CreateLimiter: rate.NewLimiter(rateLimitCreate, rateBurstCreate),
		Source:        source,
		Creator:       creator,
		Owner:         owner,
		Network:       network,
	}
}

// ListArguments - arguments for RPC
type ListArguments struct {
	Start uint64 `json:"start,string"` // first kitty index
	Count int    `json:"count"`        // number of records
}

// ListReply - result of list RPC
type ListReply struct {
	Sequence uint64         `json:"sequence,string"` // view the records were taken from
	Count    kitty.Count    `json:"count,string"`    // total kitties in that view
	Next     uint64         `json:"next,string"`     // Start value for the next call
	Records  []kitty.Record `json:"records"`
}

// List - a page of the published view
func (k *Kitties) List(arguments *ListArguments, reply *ListReply) error {

	if err := ratelimit.LimitN(k.Limiter, arguments.Count, MaximumListCount); nil != err {
		return err
	}

	log := k.Log
	log.Infof("Kitties.List: %+v", arguments)

	view := k.Source.View()
	reply.Sequence = view.Sequence
	reply.Count = view.Count
	reply.Records, reply.Next = page(view.Records, arguments.Start, arguments.Count)
	return nil
}

// MineArguments - arguments for RPC
type MineArguments struct {
	Owner string `json:"owner"`        // SS58, blank for the configured default
	Start uint64 `json:"start,string"` // first kitty index
	Count int    `json:"count"`        // number of records
}

// MineReply - result of mine RPC
type MineReply struct {
	Owner    string         `json:"owner"` // as rendered for this chain
	Sequence uint64         `json:"sequence,string"`
	Next     uint64         `json:"next,string"`
	Records  []kitty.Record `json:"records"`
}

// Mine - a page of the kitties whose resolved owner is the account
//
// kitties with an unresolved owner are left out
func (k *Kitties) Mine(arguments *MineArguments, reply *MineReply) error {

	if err := ratelimit.LimitN(k.Limiter, arguments.Count, MaximumListCount); nil != err {
		return err
	}

	log := k.Log
	log.Infof("Kitties.Mine: %+v", arguments)

	owner := arguments.Owner
	if "" == owner && nil != k.Owner {
		owner = k.Owner.Get()
	}
	if "" == owner {
		return fault.MissingParameters
	}

	// accept an address from any network
	account, _, err := substrate.ParseSS58(owner)
	if nil != err {
		return err
	}
	address := account.SS58(k.Network)

	view := k.Source.View()
	reply.Owner = address
	reply.Sequence = view.Sequence
	reply.Records, reply.Next = page(view.OwnedBy(address), arguments.Start, arguments.Count)
	return nil
}

// StatusArguments - empty arguments for status request
type StatusArguments struct{}

// StatusReply - results from status request
type StatusReply struct {
	Message        string      `json:"message"`
	StatusSequence uint64      `json:"statusSequence,string"`
	ViewSequence   uint64      `json:"viewSequence,string"`
	Count          kitty.Count `json:"count,string"`
	Resolved       int         `json:"resolved"` // records with both dna and owner present
}

// Status - the status slot and a summary of the view
func (k *Kitties) Status(_ *StatusArguments, reply *StatusReply) error {

	if err := ratelimit.Limit(k.Limiter); nil != err {
		return err
	}

	status := k.Source.Status()
	view := k.Source.View()

	reply.Message = status.Message
	reply.StatusSequence = status.Sequence
	reply.ViewSequence = view.Sequence
	reply.Count = view.Count
	for _, r := range view.Records {
		if r.Resolved() {
			reply.Resolved += 1
		}
	}
	return nil
}

// CreateArguments - empty arguments for create request
type CreateArguments struct{}

// CreateReply - results from create request
type CreateReply struct {
	Submitted bool `json:"submitted"`
}

// Create - ask the submission command to create one kitty
//
// the new kitty appears in the view once the chain count changes
func (k *Kitties) Create(_ *CreateArguments, reply *CreateReply) error {

	if err := ratelimit.Limit(k.CreateLimiter); nil != err {
		return err
	}

	if nil == k.Creator {
		return fault.CreateNotConfigured
	}

	k.Log.Info("Kitties.Create")

	ctx, cancel := context.WithTimeout(context.Background(), createCallTimeout)
	defer cancel()

	err := k.Creator.Create(ctx)
	if nil != err {
		k.Log.Errorf("create error: %s", err)
		return err
	}
	reply.Submitted = true
	return nil
}

// records with index >= start, at most count of them
//
// records are in ascending index order
func page(records []kitty.Record, start uint64, count int) ([]kitty.Record, uint64) {
	result := make([]kitty.Record, 0, count)
	next := start
	for _, r := range records {
		if r.Id < start {
			continue
		}
		if len(result) >= count {
			break
		}
		result = append(result, r)
		next = r.Id + 1
	}
	return result, next
}
