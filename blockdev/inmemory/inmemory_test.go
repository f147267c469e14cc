/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Thu Feb 14 14:40:05 2019 mstenber
 * Last modified: Fri Feb 15 09:50:12 2019 mstenber
 * Edit time:     9 min
 *
 */

package inmemory

import (
	"testing"

	"github.com/stvp/assert"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/blockdev/blockdevtest"
	"github.com/fingon/go-blkcache/codec"
)

func open(config blockdev.Configuration) blockdev.Device {
	return NewInMemoryDevice(config)
}

func TestInMemory(t *testing.T) {
	t.Parallel()
	blockdevtest.ProdDevice(t, open, blockdev.Configuration{}, false)
}

func TestInMemoryCodec(t *testing.T) {
	t.Parallel()
	c := codec.CodecChain{}.Init(
		codec.EncryptingCodec{}.Init([]byte("pw"), []byte("salt"), 16),
		&codec.CompressingCodec{})
	blockdevtest.ProdDevice(t, open, blockdev.Configuration{Codec: c}, false)
}

func TestCounts(t *testing.T) {
	t.Parallel()
	dev := NewInMemoryDevice(blockdev.Configuration{})
	buf := make([]byte, blockdev.BlockSize)
	assert.Nil(t, dev.WriteBlock(1, buf))
	assert.Nil(t, dev.ReadBlock(1, buf))
	assert.Nil(t, dev.ReadBlock(2, buf))
	reads, writes := dev.Counts()
	assert.Equal(t, reads, 2)
	assert.Equal(t, writes, 1)
}
