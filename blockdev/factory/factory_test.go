/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 16:28:57 2018 mstenber
 * Last modified: Fri Feb 15 10:08:44 2019 mstenber
 * Edit time:     14 min
 *
 */

package factory

import (
	"testing"

	"github.com/stvp/assert"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/blockdev/blockdevtest"
	"github.com/fingon/go-blkcache/codec"
)

func TestList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, len(List()), len(deviceFactories))
	assert.Equal(t, List(), []string{"badger", "bolt", "file", "inmemory"})
}

func TestNewUnknown(t *testing.T) {
	t.Parallel()
	_, err := New("tape", blockdev.Configuration{})
	assert.True(t, err != nil)
}

func TestNewEach(t *testing.T) {
	for _, name := range List() {
		name := name
		t.Run(name, func(t *testing.T) {
			dev, err := New(name, blockdev.Configuration{Directory: t.TempDir()})
			assert.Nil(t, err)
			defer dev.Close()
			buf := make([]byte, blockdev.BlockSize)
			assert.Nil(t, dev.WriteBlock(1, blockdevtest.Pattern(1, 3)))
			assert.Nil(t, dev.ReadBlock(1, buf))
			assert.Equal(t, buf, blockdevtest.Pattern(1, 3))
		})
	}
}

func TestNewCodec(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewCodec(CodecConfiguration{}))

	add := func(config CodecConfiguration, length int) {
		c := NewCodec(config)
		chain, ok := c.(*codec.CodecChain)
		assert.True(t, ok)
		assert.Equal(t, chain.Len(), length)
		p := blockdevtest.Pattern(4, 4)
		enc, err := c.EncodeBytes(p, []byte("id"))
		assert.Nil(t, err)
		dec, err := c.DecodeBytes(enc, []byte("id"))
		assert.Nil(t, err)
		assert.Equal(t, dec, p)
	}
	add(CodecConfiguration{Compress: true}, 1)
	add(CodecConfiguration{Authenticate: true, Iterations: 8}, 1)
	add(CodecConfiguration{Password: "pw", Iterations: 8}, 1)
	add(CodecConfiguration{Password: "pw", Authenticate: true, Compress: true, Iterations: 8}, 2)
}
