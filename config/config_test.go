/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Tue Feb 19 13:20:55 2019 mstenber
 * Last modified: Tue Feb 19 14:05:30 2019 mstenber
 * Edit time:     18 min
 *
 */

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stvp/assert"

	"github.com/fingon/go-blkcache/blockdev"
)

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "blkcache.yaml")
	assert.Nil(t, ioutil.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	c, err := Load("")
	assert.Nil(t, err)
	assert.Equal(t, *c, Default())
	assert.Nil(t, c.Validate())

	c, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Nil(t, err)
	assert.Equal(t, *c, Default())
}

func TestYAMLAndEnvironment(t *testing.T) {
	path := writeFile(t, `
backend: bolt
directory: /tmp/x
cacheCapacity: 4
password: sekrit
compress: true
bitmapStart: 2
bitmapBlocks: 3
`)
	os.Setenv("BLKCACHE_CACHE_CAPACITY", "8")
	os.Setenv("BLKCACHE_FLUSH_PARALLELISM", "2")
	defer os.Unsetenv("BLKCACHE_CACHE_CAPACITY")
	defer os.Unsetenv("BLKCACHE_FLUSH_PARALLELISM")

	c, err := Load(path)
	assert.Nil(t, err)
	assert.Equal(t, c.Backend, "bolt")
	assert.Equal(t, c.Directory, "/tmp/x")
	assert.Equal(t, c.CacheCapacity, 8)
	assert.Equal(t, c.FlushParallelism, 2)
	assert.Equal(t, c.BitmapStart, uint64(2))
	assert.Equal(t, c.BitmapBlocks, uint64(3))
	assert.Nil(t, c.Validate())
	assert.True(t, c.DeviceConfiguration().Codec != nil)

	m := c.NewManager()
	assert.Equal(t, m.Capacity, 8)
	assert.Equal(t, m.FlushParallelism, 2)
	b := c.NewBitmap(m)
	assert.Equal(t, b.StartBlockId, uint64(2))
	assert.Equal(t, b.Capacity(), uint64(3*4096))
}

func TestStrict(t *testing.T) {
	path := writeFile(t, "backend: bolt\nbogus: 1\n")
	_, err := Load(path)
	assert.True(t, err != nil)
}

func TestValidate(t *testing.T) {
	bad := func(mutate func(c *Config)) {
		c := Default()
		mutate(&c)
		assert.True(t, c.Validate() != nil)
	}
	bad(func(c *Config) { c.Backend = "tape" })
	bad(func(c *Config) { c.Directory = "" })
	bad(func(c *Config) { c.CacheCapacity = 0 })
	bad(func(c *Config) { c.FlushParallelism = -1 })
	bad(func(c *Config) { c.BitmapBlocks = 0 })
	bad(func(c *Config) { c.DeviceBlocks = 4; c.BitmapStart = 3; c.BitmapBlocks = 2 })
	bad(func(c *Config) { c.Compress = true })
}

func TestOpen(t *testing.T) {
	c := Default()
	c.Backend = "inmemory"
	c.DeviceBlocks = 16
	dev, err := c.Open()
	assert.Nil(t, err)
	defer dev.Close()
	buf := make([]byte, blockdev.BlockSize)
	assert.True(t, dev.ReadBlock(16, buf) != nil)
	assert.Nil(t, dev.ReadBlock(15, buf))
}
