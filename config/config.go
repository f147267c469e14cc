/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Tue Feb 19 12:30:41 2019 mstenber
 * Last modified: Tue Feb 19 14:02:13 2019 mstenber
 * Edit time:     44 min
 *
 */

// config loads the settings of the command line tools: a YAML file
// first, then BLKCACHE_* environment variables on top of it.
package config

import (
	"io/ioutil"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/fingon/go-blkcache/bcache"
	"github.com/fingon/go-blkcache/bitmap"
	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/blockdev/factory"
)

const EnvPrefix = "BLKCACHE"

type Config struct {
	Backend   string `envconfig:"BACKEND" yaml:"backend"`
	Directory string `envconfig:"DIRECTORY" yaml:"directory"`

	// DeviceBlocks bounds the device; 0 means unbounded.
	DeviceBlocks uint64 `envconfig:"DEVICE_BLOCKS" yaml:"deviceBlocks"`

	CacheCapacity    int `envconfig:"CACHE_CAPACITY" yaml:"cacheCapacity"`
	FlushParallelism int `envconfig:"FLUSH_PARALLELISM" yaml:"flushParallelism"`

	Password     string `envconfig:"PASSWORD" yaml:"password"`
	Salt         string `envconfig:"SALT" yaml:"salt"`
	Iterations   int    `envconfig:"ITERATIONS" yaml:"iterations"`
	Compress     bool   `envconfig:"COMPRESS" yaml:"compress"`
	Authenticate bool   `envconfig:"AUTHENTICATE" yaml:"authenticate"`

	BitmapStart  uint64 `envconfig:"BITMAP_START" yaml:"bitmapStart"`
	BitmapBlocks uint64 `envconfig:"BITMAP_BLOCKS" yaml:"bitmapBlocks"`
}

// Default is the configuration used for anything not set.
func Default() Config {
	return Config{
		Backend:       "file",
		Directory:     ".",
		CacheCapacity: bcache.DefaultCapacity,
		BitmapBlocks:  1,
	}
}

// Load reads path (if non-empty and present) and then the
// environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrap(err, "reading config file")
			}
		} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	}
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, errors.Wrap(err, "parsing environment variables")
	}
	return &c, nil
}

func (self *Config) Validate() error {
	known := false
	for _, name := range factory.List() {
		if name == self.Backend {
			known = true
		}
	}
	switch {
	case !known:
		return errors.Errorf("backend %q is not one of %v", self.Backend, factory.List())
	case self.Directory == "":
		return errors.New("directory must be set")
	case self.CacheCapacity <= 0:
		return errors.Errorf("cacheCapacity %d must be positive", self.CacheCapacity)
	case self.FlushParallelism < 0:
		return errors.Errorf("flushParallelism %d must not be negative", self.FlushParallelism)
	case self.BitmapBlocks == 0:
		return errors.New("bitmapBlocks must be positive")
	case self.DeviceBlocks > 0 && self.BitmapStart+self.BitmapBlocks > self.DeviceBlocks:
		return errors.Errorf("bitmap blocks %d-%d do not fit in %d device blocks",
			self.BitmapStart, self.BitmapStart+self.BitmapBlocks-1, self.DeviceBlocks)
	case self.Backend == "file" && (self.Password != "" || self.Compress || self.Authenticate):
		return errors.New("file backend does not support encryption, compression or authentication")
	}
	return nil
}

func (self *Config) CodecConfiguration() factory.CodecConfiguration {
	return factory.CodecConfiguration{
		Password:     self.Password,
		Salt:         self.Salt,
		Iterations:   self.Iterations,
		Compress:     self.Compress,
		Authenticate: self.Authenticate,
	}
}

func (self *Config) DeviceConfiguration() blockdev.Configuration {
	return blockdev.Configuration{
		Directory: self.Directory,
		Blocks:    self.DeviceBlocks,
		Codec:     factory.NewCodec(self.CodecConfiguration()),
	}
}

// Open opens the configured device.
func (self *Config) Open() (blockdev.Device, error) {
	if err := self.Validate(); err != nil {
		return nil, err
	}
	return factory.New(self.Backend, self.DeviceConfiguration())
}

func (self *Config) NewManager() *bcache.Manager {
	m := bcache.NewManager(self.CacheCapacity)
	m.FlushParallelism = self.FlushParallelism
	return m
}

func (self *Config) NewBitmap(m *bcache.Manager) *bitmap.Bitmap {
	return bitmap.New(self.BitmapStart, self.BitmapBlocks, m)
}
