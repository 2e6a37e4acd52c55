// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package aggregator

import (
	"sort"

	"github.com/bitmark-inc/kittywatch/fetcher"
	"github.com/bitmark-inc/kittywatch/kitty"
)

// EntityStore - latest dna result for each index
//
// a store is never modified in place, Update and Truncate return a
// new store
type EntityStore struct {
	entries map[kitty.Index]fetcher.Entity
}

// NewEntityStore - store holding the given results
func NewEntityStore(entities []fetcher.Entity) *EntityStore {
	s := &EntityStore{
		entries: make(map[kitty.Index]fetcher.Entity, len(entities)),
	}
	for _, e := range entities {
		s.entries[e.Index] = e
	}
	return s
}

// Get - result for an index, Pending if no lookup has covered it
func (s *EntityStore) Get(index kitty.Index) fetcher.Entity {
	if e, ok := s.entries[index]; ok {
		return e
	}
	return fetcher.Entity{
		Index: index,
		State: kitty.Pending,
	}
}

// Len - number of indices with a result
func (s *EntityStore) Len() int {
	return len(s.entries)
}

// Update - new store with the completion applied, results at or
// beyond count are dropped and their number returned
func (s *EntityStore) Update(entities []fetcher.Entity, count kitty.Count) (*EntityStore, int) {
	next := s.Truncate(count)
	discarded := 0
	for _, e := range entities {
		if e.Index >= count {
			discarded += 1
			continue
		}
		next.entries[e.Index] = e
	}
	return next, discarded
}

// Truncate - new store without the indices at or beyond count
func (s *EntityStore) Truncate(count kitty.Count) *EntityStore {
	next := &EntityStore{
		entries: make(map[kitty.Index]fetcher.Entity, len(s.entries)),
	}
	for index, e := range s.entries {
		if index < count {
			next.entries[index] = e
		}
	}
	return next
}

// List - all results in index order
func (s *EntityStore) List() []fetcher.Entity {
	list := make([]fetcher.Entity, 0, len(s.entries))
	for _, e := range s.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	return list
}

// OwnerStore - latest owner result for each index
type OwnerStore struct {
	entries map[kitty.Index]fetcher.Owner
}

// NewOwnerStore - store holding the given results
func NewOwnerStore(owners []fetcher.Owner) *OwnerStore {
	s := &OwnerStore{
		entries: make(map[kitty.Index]fetcher.Owner, len(owners)),
	}
	for _, o := range owners {
		s.entries[o.Index] = o
	}
	return s
}

// Get - result for an index, Pending if no lookup has covered it
func (s *OwnerStore) Get(index kitty.Index) fetcher.Owner {
	if o, ok := s.entries[index]; ok {
		return o
	}
	return fetcher.Owner{
		Index: index,
		State: kitty.Pending,
	}
}

// Len - number of indices with a result
func (s *OwnerStore) Len() int {
	return len(s.entries)
}

// Update - new store with the completion applied
func (s *OwnerStore) Update(owners []fetcher.Owner, count kitty.Count) (*OwnerStore, int) {
	next := s.Truncate(count)
	discarded := 0
	for _, o := range owners {
		if o.Index >= count {
			discarded += 1
			continue
		}
		next.entries[o.Index] = o
	}
	return next, discarded
}

// Truncate - new store without the indices at or beyond count
func (s *OwnerStore) Truncate(count kitty.Count) *OwnerStore {
	next := &OwnerStore{
		entries: make(map[kitty.Index]fetcher.Owner, len(s.entries)),
	}
	for index, o := range s.entries {
		if index < count {
			next.entries[index] = o
		}
	}
	return next
}

// List - all results in index order
func (s *OwnerStore) List() []fetcher.Owner {
	list := make([]fetcher.Owner, 0, len(s.entries))
	for _, o := range s.entries {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	return list
}
