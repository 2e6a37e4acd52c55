// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"sync"

	"github.com/bitmark-inc/kittywatch/kitty"
)

// Status - the status slot
//
// Sequence increases on every SetStatus, so a repeated message is
// still a new status
type Status struct {
	Message  string `json:"message"`
	Sequence uint64 `json:"sequence,string"`
}

// Publisher - latest view and status
type Publisher struct {
	sync.RWMutex

	view   kitty.View
	status Status

	subscribers map[*Subscription]struct{}
}

// Subscription - coalescing feed of views and statuses
type Subscription struct {
	publisher *Publisher
	views     chan kitty.View
	statuses  chan Status
}

// New - an empty publisher, the view has no records until the first
// Publish
func New() *Publisher {
	return &Publisher{
		view: kitty.View{
			Records: []kitty.Record{},
		},
		subscribers: make(map[*Subscription]struct{}),
	}
}

// Publish - replace the view
func (p *Publisher) Publish(count kitty.Count, records []kitty.Record) {
	p.Lock()
	defer p.Unlock()

	p.view = kitty.View{
		Sequence: p.view.Sequence + 1,
		Count:    count,
		Records:  records,
	}

	for s := range p.subscribers {
		offerView(s.views, p.view)
	}
}

// SetStatus - replace the status message
func (p *Publisher) SetStatus(message string) {
	p.Lock()
	defer p.Unlock()

	p.status = Status{
		Message:  message,
		Sequence: p.status.Sequence + 1,
	}

	for s := range p.subscribers {
		offerStatus(s.statuses, p.status)
	}
}

// View - the latest view
//
// the records slice is shared and must not be modified
func (p *Publisher) View() kitty.View {
	p.RLock()
	defer p.RUnlock()
	return p.view
}

// Status - the latest status
func (p *Publisher) Status() Status {
	p.RLock()
	defer p.RUnlock()
	return p.status
}

// Subscribe - receive every later view and status, the current ones
// are delivered first
func (p *Publisher) Subscribe() *Subscription {
	s := &Subscription{
		publisher: p,
		views:     make(chan kitty.View, 1),
		statuses:  make(chan Status, 1),
	}

	p.Lock()
	defer p.Unlock()

	p.subscribers[s] = struct{}{}
	if p.view.Sequence > 0 {
		s.views <- p.view
	}
	if "" != p.status.Message {
		s.statuses <- p.status
	}
	return s
}

// Views - channel of views
func (s *Subscription) Views() <-chan kitty.View {
	return s.views
}

// Statuses - channel of statuses
func (s *Subscription) Statuses() <-chan Status {
	return s.statuses
}

// Cancel - stop receiving
func (s *Subscription) Cancel() {
	s.publisher.Lock()
	delete(s.publisher.subscribers, s)
	s.publisher.Unlock()
}

// only called with the publisher locked, so nothing else can fill
// the slot between the drain and the send
func offerView(c chan kitty.View, v kitty.View) {
	select {
	case c <- v:
	default:
		select {
		case <-c:
		default:
		}
		c <- v
	}
}

func offerStatus(c chan Status, s Status) {
	select {
	case c <- s:
	default:
		select {
		case <-c:
		default:
		}
		c <- s
	}
}
