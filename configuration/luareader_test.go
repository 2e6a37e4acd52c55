// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/kittywatch/configuration"
	"github.com/bitmark-inc/kittywatch/fault"
)

type nodeType struct {
	URL       string `gluamapper:"url"`
	BatchSize int    `gluamapper:"batch_size"`
}

type testConfiguration struct {
	DataDirectory string            `gluamapper:"data_directory"`
	Chain         string            `gluamapper:"chain"`
	Node          nodeType          `gluamapper:"node"`
	Broadcast     []string          `gluamapper:"broadcast"`
	Levels        map[string]string `gluamapper:"levels"`
}

const testConfig = `
local M = {}

M.data_directory = arg[0]:match("(.*/)")
M.chain = variables["chain"] or "local"
M.node = {
    url = "ws://127.0.0.1:9944",
    batch_size = 50,
}
M.broadcast = { "127.0.0.1:2140", "[::1]:2140" }
M.levels = { main = "info", DEFAULT = "critical" }

return M
`

func writeConfig(t *testing.T, text string) (string, func()) {
	dir, err := ioutil.TempDir("", "kittywatch-config")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	name := filepath.Join(dir, "kittywatch.conf")
	err = ioutil.WriteFile(name, []byte(text), 0600)
	if nil != err {
		os.RemoveAll(dir)
		t.Fatalf("write error: %s", err)
	}
	return name, func() {
		os.RemoveAll(dir)
	}
}

func TestParseConfigurationFile(t *testing.T) {
	name, cleanup := writeConfig(t, testConfig)
	defer cleanup()

	options := &testConfiguration{
		Chain: "polkadot",
	}
	err := configuration.ParseConfigurationFile(name, options, map[string]string{"chain": "kusama"})
	assert.Nil(t, err, "parse error")

	assert.Equal(t, filepath.Dir(name)+"/", options.DataDirectory, "wrong data directory")
	assert.Equal(t, "kusama", options.Chain, "variable not seen")
	assert.Equal(t, "ws://127.0.0.1:9944", options.Node.URL, "wrong url")
	assert.Equal(t, 50, options.Node.BatchSize, "wrong batch size")
	assert.Equal(t, []string{"127.0.0.1:2140", "[::1]:2140"}, options.Broadcast, "wrong broadcast")
	assert.Equal(t, "critical", options.Levels["DEFAULT"], "wrong level")
}

func TestParseConfigurationDefaults(t *testing.T) {
	name, cleanup := writeConfig(t, testConfig)
	defer cleanup()

	options := &testConfiguration{}
	err := configuration.ParseConfigurationFile(name, options, nil)
	assert.Nil(t, err, "parse error")
	assert.Equal(t, "local", options.Chain, "wrong default chain")
}

func TestParseConfigurationErrors(t *testing.T) {
	name, cleanup := writeConfig(t, "return 42\n")
	defer cleanup()

	options := &testConfiguration{}

	err := configuration.ParseConfigurationFile(name, options, nil)
	assert.True(t, fault.IsErrInvalid(err), "non-table accepted: %v", err)

	err = configuration.ParseConfigurationFile(name, *options, nil)
	assert.Equal(t, fault.InvalidStructPointer, err, "non-pointer accepted")

	err = configuration.ParseConfigurationFile(filepath.Join(filepath.Dir(name), "missing.conf"), options, nil)
	assert.NotNil(t, err, "missing file accepted")

	badName, badCleanup := writeConfig(t, "this is not lua")
	defer badCleanup()
	err = configuration.ParseConfigurationFile(badName, options, nil)
	assert.NotNil(t, err, "syntax error accepted")
}
