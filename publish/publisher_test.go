// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/publish"
)

func records(n int) []kitty.Record {
	list := make([]kitty.Record, n)
	for i := range list {
		list[i].Id = kitty.Index(i)
	}
	return list
}

func TestPublishSequence(t *testing.T) {
	p := publish.New()

	v := p.View()
	assert.Equal(t, uint64(0), v.Sequence, "wrong initial sequence")
	assert.NotNil(t, v.Records, "nil initial records")

	p.Publish(2, records(2))
	p.Publish(2, records(2))
	p.Publish(1, records(1))

	v = p.View()
	assert.Equal(t, uint64(3), v.Sequence, "one publish did not give one sequence")
	assert.Equal(t, kitty.Count(1), v.Count, "wrong count")
	assert.Equal(t, 1, len(v.Records), "wrong records")
	assert.Equal(t, uint64(0), p.Status().Sequence, "publish changed the status")
}

func TestSubscriptionCoalesces(t *testing.T) {
	p := publish.New()
	s := p.Subscribe()
	defer s.Cancel()

	assert.Equal(t, 0, len(s.Views()), "view before publish")

	for i := 1; i <= 5; i += 1 {
		p.Publish(kitty.Count(i), records(i))
	}

	v := <-s.Views()
	assert.Equal(t, uint64(5), v.Sequence, "not the latest view")
	assert.Equal(t, 0, len(s.Views()), "stale view kept")
}

func TestSubscribeGetsCurrent(t *testing.T) {
	p := publish.New()
	p.Publish(3, records(3))
	p.SetStatus("ready")

	s := p.Subscribe()
	defer s.Cancel()

	v := <-s.Views()
	assert.Equal(t, kitty.Count(3), v.Count, "wrong view")
	status := <-s.Statuses()
	assert.Equal(t, "ready", status.Message, "wrong status")
}

func TestStatusChanges(t *testing.T) {
	p := publish.New()
	s := p.Subscribe()

	p.SetStatus("loading 2 kitties")
	p.SetStatus("loading 3 kitties")
	assert.Equal(t, "loading 3 kitties", (<-s.Statuses()).Message, "wrong status")
	assert.Equal(t, 0, len(s.Statuses()), "stale status kept")

	p.SetStatus("ready")
	assert.Equal(t, "ready", p.Status().Message, "wrong stored status")

	s.Cancel()
	<-s.Statuses()
	p.SetStatus("connecting")
	assert.Equal(t, 0, len(s.Statuses()), "cancelled subscription received status")
}

func TestRepeatedStatusDelivered(t *testing.T) {
	p := publish.New()
	s := p.Subscribe()
	defer s.Cancel()

	p.SetStatus("create submitted")
	first := <-s.Statuses()

	p.SetStatus("create submitted")
	second := <-s.Statuses()

	assert.Equal(t, "create submitted", second.Message, "wrong status")
	assert.Equal(t, uint64(1), first.Sequence, "wrong first sequence")
	assert.Equal(t, uint64(2), second.Sequence, "repeated status not distinguished")
	assert.Equal(t, second, p.Status(), "wrong stored status")

	// a view does not change the status
	p.Publish(1, records(1))
	assert.Equal(t, uint64(2), p.Status().Sequence, "publish changed the status sequence")
}
