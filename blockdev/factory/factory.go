/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 12:22:52 2018 mstenber
 * Last modified: Thu Feb 14 13:40:02 2019 mstenber
 * Edit time:     54 min
 *
 */

package factory

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/blockdev/badger"
	"github.com/fingon/go-blkcache/blockdev/bolt"
	"github.com/fingon/go-blkcache/blockdev/file"
	"github.com/fingon/go-blkcache/blockdev/inmemory"
	"github.com/fingon/go-blkcache/codec"
	"github.com/fingon/go-blkcache/mlog"
)

type factoryCallback func(config blockdev.Configuration) (blockdev.Device, error)

var deviceFactories = map[string]factoryCallback{
	"inmemory": func(config blockdev.Configuration) (blockdev.Device, error) {
		return inmemory.NewInMemoryDevice(config), nil
	},
	"file":   file.NewFileDevice,
	"bolt":   bolt.NewBoltDevice,
	"badger": badger.NewBadgerDevice,
}

// List returns the supported device names, sorted.
func List() []string {
	keys := make([]string, 0, len(deviceFactories))
	for k := range deviceFactories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New opens the named device.
func New(name string, config blockdev.Configuration) (blockdev.Device, error) {
	mlog.Printf2("blockdev/factory/factory", "f.New %v %v", name, config)
	cb, ok := deviceFactories[name]
	if !ok {
		return nil, errors.Errorf("unknown device %q (possible: %v)", name, List())
	}
	return cb(config)
}

type CodecConfiguration struct {
	Password, Salt string
	Iterations     int
	Compress       bool

	// Authenticate adds CMAC tags; ignored when Password makes the
	// chain encrypting (GCM authenticates already).
	Authenticate bool
}

const DefaultIterations = 12345
const DefaultSalt = "blkcache"

// NewCodec assembles the codec chain, or returns nil if the
// configuration asks for no transformation at all.
func NewCodec(config CodecConfiguration) codec.Codec {
	iterations := config.Iterations
	if iterations == 0 {
		iterations = DefaultIterations
	}
	salt := config.Salt
	if salt == "" {
		salt = DefaultSalt
	}
	codecs := []codec.Codec{}
	if config.Password != "" {
		mlog.Printf2("blockdev/factory/factory", " with encryption")
		codecs = append(codecs, codec.EncryptingCodec{}.Init([]byte(config.Password), []byte(salt), iterations))
	} else if config.Authenticate {
		mlog.Printf2("blockdev/factory/factory", " with authentication")
		codecs = append(codecs, (&codec.AuthenticatingCodec{}).Init([]byte(config.Password), []byte(salt), iterations))
	}
	if config.Compress {
		mlog.Printf2("blockdev/factory/factory", " with compression")
		codecs = append(codecs, &codec.CompressingCodec{})
	}
	if len(codecs) == 0 {
		return nil
	}
	return codec.CodecChain{}.Init(codecs...)
}
