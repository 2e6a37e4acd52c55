// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/rpc/kitties"
	"github.com/bitmark-inc/kittywatch/substrate"
)

const (
	configWatcherLoggerPrefix = "config-watcher"
	defaultSettleDelay        = 2 * time.Second
)

// reload the default owner when the configuration file changes
//
// the directory is watched rather than the file since editors
// usually replace the file instead of writing it in place
type configWatcher struct {
	log       *logger.L
	watcher   *fsnotify.Watcher
	fileName  string
	variables map[string]string
	owner     *kitties.DefaultOwner
	delay     time.Duration
}

func newConfigWatcher(log *logger.L, fileName string, variables map[string]string, owner *kitties.DefaultOwner) (*configWatcher, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	if nil == owner {
		return nil, fault.MissingParameters
	}

	filePath, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}

	err = watcher.Add(filepath.Dir(filePath))
	if nil != err {
		watcher.Close()
		return nil, err
	}

	return &configWatcher{
		log:       log,
		watcher:   watcher,
		fileName:  filePath,
		variables: variables,
		owner:     owner,
		delay:     defaultSettleDelay,
	}, nil
}

// Run - background process entry
func (w *configWatcher) Run(args interface{}, shutdown <-chan struct{}) {

	log := w.log

	log.Infof("watching: %q", w.fileName)

	// nil until a change is seen, several events for one save
	// collapse into a single reload
	var settle <-chan time.Time

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop

		case event, ok := <-w.watcher.Events:
			if !ok {
				break loop
			}
			if filepath.Clean(event.Name) != w.fileName {
				continue loop
			}
			log.Debugf("file event: %v", event)
			if watcherEventFileRemove(event) {
				log.Warnf("file: %q removed", w.fileName)
				continue loop
			}
			if watcherEventFileChange(event) {
				settle = time.After(w.delay)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				break loop
			}
			log.Errorf("watcher error: %s", err)

		case <-settle:
			settle = nil
			w.reload()
		}
	}

	w.watcher.Close()
	log.Info("stopped")
}

func (w *configWatcher) reload() {
	options, err := getConfiguration(w.fileName, w.variables)
	if nil != err {
		w.log.Errorf("failed to read configuration from: %q  error: %s", w.fileName, err)
		return
	}

	if "" != options.Owner {
		if _, _, err := substrate.ParseSS58(options.Owner); nil != err {
			w.log.Errorf("owner: %q  error: %s", options.Owner, err)
			return
		}
	}

	if options.Owner == w.owner.Get() {
		w.log.Debug("owner unchanged")
		return
	}

	w.log.Infof("owner: %q -> %q", w.owner.Get(), options.Owner)
	w.owner.Set(options.Owner)
}

func watcherEventFileRemove(event fsnotify.Event) bool {
	return event.Op&fsnotify.Remove == fsnotify.Remove ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}

func watcherEventFileChange(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create
}
