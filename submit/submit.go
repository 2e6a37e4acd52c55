// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package submit

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/fault"
)

// status messages
const (
	StatusSubmitted = "create submitted"
	statusFailed    = "create failed: "
)

const defaultTimeout = 60 * time.Second

// Configuration - the external command that signs and sends a
// createKitty extrinsic
type Configuration struct {
	Command   string   `gluamapper:"command" json:"command"`
	Arguments []string `gluamapper:"arguments" json:"arguments"`
	Timeout   int      `gluamapper:"timeout" json:"timeout"` // seconds
}

// StatusSetter - receives the outcome of each submission
type StatusSetter interface {
	SetStatus(status string)
}

// Submitter - runs the create command, one at a time
type Submitter struct {
	sync.Mutex
	log       *logger.L
	command   string
	arguments []string
	timeout   time.Duration
	status    StatusSetter
}

// New - returns fault.CreateNotConfigured if there is no command
func New(log *logger.L, configuration *Configuration, status StatusSetter) (*Submitter, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	if nil == configuration || "" == configuration.Command {
		return nil, fault.CreateNotConfigured
	}
	if nil == status {
		return nil, fault.MissingParameters
	}

	timeout := defaultTimeout
	if configuration.Timeout > 0 {
		timeout = time.Duration(configuration.Timeout) * time.Second
	}

	return &Submitter{
		log:       log,
		command:   configuration.Command,
		arguments: append([]string{}, configuration.Arguments...),
		timeout:   timeout,
		status:    status,
	}, nil
}

// Create - run the command and report the outcome in the status slot
func (s *Submitter) Create(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.log.Infof("run: %s %s", s.command, strings.Join(s.arguments, " "))

	cmd := exec.CommandContext(ctx, s.command, s.arguments...)
	output, err := cmd.CombinedOutput()
	if nil != err {
		detail := err.Error()
		if context.DeadlineExceeded == ctx.Err() {
			detail = "timed out"
		}
		if line := firstLine(output); "" != line {
			detail += ": " + line
		}
		s.log.Errorf("create: %s", detail)
		s.status.SetStatus(statusFailed + detail)
		return fault.Wrap(fault.CreateCommandFailed, detail)
	}

	s.log.Infof("create output: %s", bytes.TrimSpace(output))
	s.status.SetStatus(StatusSubmitted)
	return nil
}

func firstLine(output []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); "" != line {
			return line
		}
	}
	return ""
}
