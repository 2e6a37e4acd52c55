// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/kittywatch/background"
	"github.com/bitmark-inc/kittywatch/chain"
	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/fixtures"
	"github.com/bitmark-inc/kittywatch/rpc/kitties"
)

const (
	testConfigFile = "kittywatch.conf"
)

func setupConfigDirectory(t *testing.T) string {
	fixtures.SetupTestLogger()

	dir, err := ioutil.TempDir("", "kittywatch")
	if nil != err {
		t.Fatalf("temporary directory error: %s", err)
	}
	return dir
}

func teardownConfigDirectory(dir string) {
	os.RemoveAll(dir)
	fixtures.TeardownTestLogger()
}

func writeConfiguration(t *testing.T, dir string, body string) string {
	fileName := filepath.Join(dir, testConfigFile)
	data := fmt.Sprintf("return {\n  data_directory = \".\",\n%s\n}\n", body)
	if err := ioutil.WriteFile(fileName, []byte(data), 0600); nil != err {
		t.Fatalf("write configuration error: %s", err)
	}
	return fileName
}

func TestGetConfigurationDefaults(t *testing.T) {
	dir := setupConfigDirectory(t)
	defer teardownConfigDirectory(dir)

	fileName := writeConfiguration(t, dir, "")

	options, err := getConfiguration(fileName, nil)
	assert.Nil(t, err, "wrong getConfiguration")

	assert.Equal(t, chain.Local, options.Chain, "wrong chain")
	assert.Equal(t, defaultNodeURL, options.Node.URL, "wrong node url")
	assert.Equal(t, defaultPallet, options.Node.Pallet, "wrong pallet")
	assert.Equal(t, defaultNodeBatchSize, options.Node.BatchSize, "wrong batch size")
	assert.Equal(t, defaultMaximumCount, options.Node.MaximumCount, "wrong maximum count")
	assert.Equal(t, "", options.Owner, "wrong owner")
	assert.Equal(t, filepath.Join(dir, defaultLevelDBDirectory, chain.Local+defaultDatabaseSuffix), options.Database.Name, "wrong database")
	assert.Equal(t, filepath.Join(dir, defaultCertificateFile), options.ClientRPC.Certificate, "wrong certificate")
	assert.True(t, filepath.IsAbs(options.Logging.Directory), "log directory not absolute")
	assert.Equal(t, 0, len(options.ClientRPC.Listen), "rpc listen should be empty")
}

func TestGetConfigurationValues(t *testing.T) {
	dir := setupConfigDirectory(t)
	defer teardownConfigDirectory(dir)

	fileName := writeConfiguration(t, dir, `
  chain = "Kusama",
  owner = variables.owner,
  node = {
    url = "wss://node.example.com",
    batch_size = 50,
    parallel = 2,
    maximum_count = 5000,
  },
  client_rpc = {
    listen = { "127.0.0.1:2150" },
  },
  create = {
    command = "/usr/local/bin/create-kitty",
    arguments = { "--quiet" },
  },
`)

	variables := map[string]string{
		"owner": fixtures.AliceAddress,
	}
	options, err := getConfiguration(fileName, variables)
	assert.Nil(t, err, "wrong getConfiguration")

	assert.Equal(t, chain.Kusama, options.Chain, "wrong chain")
	assert.Equal(t, fixtures.AliceAddress, options.Owner, "wrong owner")
	assert.Equal(t, "wss://node.example.com", options.Node.URL, "wrong node url")
	assert.Equal(t, 50, options.Node.BatchSize, "wrong batch size")
	assert.Equal(t, 2, options.Node.Parallel, "wrong parallel")
	assert.Equal(t, 5000, options.Node.MaximumCount, "wrong maximum count")
	assert.Equal(t, defaultDNAItem, options.Node.DNAItem, "wrong default dna item")
	assert.Equal(t, []string{"127.0.0.1:2150"}, options.ClientRPC.Listen, "wrong rpc listen")
	assert.Equal(t, "/usr/local/bin/create-kitty", options.Create.Command, "wrong create command")
	assert.Equal(t, []string{"--quiet"}, options.Create.Arguments, "wrong create arguments")
	assert.Equal(t, defaultCreateTimeout, options.Create.Timeout, "wrong create timeout")
	assert.Equal(t, filepath.Join(dir, defaultLevelDBDirectory, chain.Kusama+defaultDatabaseSuffix), options.Database.Name, "wrong database")
}

func TestGetConfigurationErrors(t *testing.T) {
	dir := setupConfigDirectory(t)
	defer teardownConfigDirectory(dir)

	fileName := writeConfiguration(t, dir, `chain = "bitcoin",`)
	_, err := getConfiguration(fileName, nil)
	assert.True(t, fault.IsErrInvalid(err), "unknown chain accepted")

	fileName = writeConfiguration(t, dir, `node = { batch_size = 0 },`)
	_, err = getConfiguration(fileName, nil)
	assert.Equal(t, fault.InvalidBatchSize, err, "zero batch size accepted")

	fileName = writeConfiguration(t, dir, `node = { maximum_count = 0 },`)
	_, err = getConfiguration(fileName, nil)
	assert.True(t, fault.IsErrInvalid(err), "zero maximum count accepted")

	fileName = writeConfiguration(t, dir, `database = { name = "sub/dir.leveldb" },`)
	_, err = getConfiguration(fileName, nil)
	assert.NotNil(t, err, "database path accepted as name")

	_, err = getConfiguration(filepath.Join(dir, "missing.conf"), nil)
	assert.NotNil(t, err, "missing file accepted")
}

func TestConfigWatcherReload(t *testing.T) {
	dir := setupConfigDirectory(t)
	defer teardownConfigDirectory(dir)

	fileName := writeConfiguration(t, dir, fmt.Sprintf("  owner = %q,", fixtures.AliceAddress))

	owner := &kitties.DefaultOwner{}
	owner.Set(fixtures.AliceAddress)

	w, err := newConfigWatcher(logger.New(fixtures.LogCategory), fileName, nil, owner)
	assert.Nil(t, err, "wrong newConfigWatcher")
	w.delay = 10 * time.Millisecond

	processes := background.Start(background.Processes{w}, nil)
	defer processes.Stop()

	// allow the watch to be established
	time.Sleep(50 * time.Millisecond)

	expected := fixtures.Account(1).SS58(42)
	writeConfiguration(t, dir, fmt.Sprintf("  owner = %q,", expected))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && expected != owner.Get() {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, expected, owner.Get(), "owner not reloaded")
}

func TestConfigWatcherKeepsOwnerOnError(t *testing.T) {
	dir := setupConfigDirectory(t)
	defer teardownConfigDirectory(dir)

	fileName := writeConfiguration(t, dir, fmt.Sprintf("  owner = %q,", fixtures.AliceAddress))

	owner := &kitties.DefaultOwner{}
	owner.Set(fixtures.AliceAddress)

	w, err := newConfigWatcher(logger.New(fixtures.LogCategory), fileName, nil, owner)
	assert.Nil(t, err, "wrong newConfigWatcher")
	defer w.watcher.Close()

	writeConfiguration(t, dir, `  owner = "not-an-address",`)
	w.reload()
	assert.Equal(t, fixtures.AliceAddress, owner.Get(), "invalid owner applied")

	writeConfiguration(t, dir, `  owner = ,`)
	w.reload()
	assert.Equal(t, fixtures.AliceAddress, owner.Get(), "broken file applied")

	writeConfiguration(t, dir, "")
	w.reload()
	assert.Equal(t, "", owner.Get(), "owner not cleared")
}

func TestNewConfigWatcherInvalid(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	_, err := newConfigWatcher(nil, testConfigFile, nil, &kitties.DefaultOwner{})
	assert.Equal(t, fault.InvalidLoggerChannel, err, "nil logger accepted")

	_, err = newConfigWatcher(logger.New(fixtures.LogCategory), testConfigFile, nil, nil)
	assert.Equal(t, fault.MissingParameters, err, "nil owner accepted")
}
