// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"os"
	"path/filepath"

	"github.com/bitmark-inc/kittywatch/fault"
)

// EnsureAbsolute - relative paths are taken from directory, the result
// is always cleaned
func EnsureAbsolute(directory string, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(directory, path)
	}
	return filepath.Clean(path)
}

// MakeAbsolute - EnsureAbsolute on each path in place
//
// if optional is set a blank path stays blank
func MakeAbsolute(directory string, optional bool, paths ...*string) {
	for _, p := range paths {
		if optional && "" == *p {
			continue
		}
		*p = EnsureAbsolute(directory, *p)
	}
}

// PlainName - a file name without any directory part, joined to
// directory unless that is blank
func PlainName(directory string, name string) (string, error) {
	if "" == name || "." != filepath.Dir(name) {
		return "", fault.Wrap(fault.InvalidFileName, name)
	}
	if "" == directory {
		return name, nil
	}
	return filepath.Join(directory, name), nil
}

// EnsureDirectory - create the directory and its parents, readable
// only by the owner, if they do not exist
func EnsureDirectory(name string) error {
	if err := os.MkdirAll(name, 0700); nil != err {
		return err
	}
	return IsDirectory(name)
}

// IsDirectory - nil if name exists and is a directory
func IsDirectory(name string) error {
	info, err := os.Stat(name)
	if nil != err {
		return err
	}
	if !info.IsDir() {
		return fault.Wrap(fault.NotADirectory, name)
	}
	return nil
}

// EnsureFileExists - check if file exists
func EnsureFileExists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}
