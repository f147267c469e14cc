/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Tue Feb 19 15:50:31 2019 mstenber
 * Last modified: Tue Feb 19 16:44:50 2019 mstenber
 * Edit time:     21 min
 *
 */

package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stvp/assert"
)

type runner struct {
	t      *testing.T
	config string
}

func newRunner(t *testing.T, backend string) *runner {
	dir := t.TempDir()
	path := filepath.Join(dir, "blkcache.yaml")
	content := fmt.Sprintf("backend: %s\ndirectory: %s\nbitmapStart: 1\nbitmapBlocks: 2\n", backend, dir)
	assert.Nil(t, ioutil.WriteFile(path, []byte(content), 0600))
	return &runner{t: t, config: path}
}

func (self *runner) run(args ...string) (string, error) {
	var b bytes.Buffer
	app := newApp()
	app.Writer = &b
	app.ErrWriter = &b
	err := app.Run(append([]string{"blkbitmap", "--config", self.config}, args...))
	return b.String(), err
}

func (self *runner) ok(args ...string) string {
	out, err := self.run(args...)
	assert.Nil(self.t, err)
	return out
}

func TestCLI(t *testing.T) {
	for _, backend := range []string{"file", "bolt", "badger"} {
		backend := backend
		t.Run(backend, func(t *testing.T) {
			r := newRunner(t, backend)
			r.ok("format")
			assert.Equal(t, r.ok("alloc", "--count", "3"), "0\n1\n2\n")
			r.ok("free", "1")
			assert.Equal(t, r.ok("test", "0", "1"), "0 allocated\n1 free\n")
			assert.Equal(t, r.ok("alloc"), "1\n")
			stat := r.ok("stat")
			assert.True(t, strings.Contains(stat, "capacity: 8192\n"))
			assert.True(t, strings.Contains(stat, "allocated: 3\n"))

			dump := r.ok("dump", "1")
			assert.True(t, strings.HasPrefix(dump, "block 1:\n00000000  07 00"))

			_, err := r.run("free", "5")
			assert.True(t, err != nil)
			_, err = r.run("test", "8192")
			assert.True(t, err != nil)
			_, err = r.run("free")
			assert.True(t, err != nil)
			_, err = r.run("test", "x")
			assert.True(t, err != nil)
		})
	}
}

func TestFull(t *testing.T) {
	r := newRunner(t, "bolt")
	r.ok("alloc", "-n", "8192")
	_, err := r.run("alloc")
	assert.True(t, err != nil)
	assert.True(t, strings.Contains(r.ok("stat"), "free: 0\n"))
}
