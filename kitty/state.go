// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kitty

import (
	"encoding/json"
	"fmt"
)

// State - resolution of one half of a record
type State int

// possible states
const (
	Pending State = iota // no completed lookup has covered the index
	Absent               // lookup completed, the key holds no value
	Present              // lookup completed with a value
)

var stateNames = map[State]string{
	Pending: "pending",
	Absent:  "absent",
	Present: "present",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalJSON - state as a string
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON - state from a string
func (s *State) UnmarshalJSON(data []byte) error {
	name := ""
	if err := json.Unmarshal(data, &name); nil != err {
		return err
	}
	for k, v := range stateNames {
		if v == name {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown state: %q", name)
}
