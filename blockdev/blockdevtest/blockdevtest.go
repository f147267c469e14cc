/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Thu Feb 14 14:02:19 2019 mstenber
 * Last modified: Fri Feb 15 09:44:51 2019 mstenber
 * Edit time:     47 min
 *
 */

// blockdevtest contains the behaviour every block device must have,
// to be run from the device packages' own tests.
package blockdevtest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stvp/assert"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/util"
)

type OpenCallback func(config blockdev.Configuration) blockdev.Device

// Pattern returns deterministic, block-specific content.
func Pattern(id uint64, seed byte) []byte {
	b := make([]byte, blockdev.BlockSize)
	for i := range b {
		b[i] = byte(id) ^ byte(i) ^ seed
	}
	return b
}

func ProdBasic(t *testing.T, open OpenCallback, config blockdev.Configuration) {
	dev := open(config)
	defer dev.Close()
	buf := make([]byte, blockdev.BlockSize)

	// fresh device is zeroed
	buf[0] = 42
	assert.Nil(t, dev.ReadBlock(3, buf))
	assert.Equal(t, buf, make([]byte, blockdev.BlockSize))

	assert.Nil(t, dev.WriteBlock(3, Pattern(3, 1)))
	assert.Nil(t, dev.WriteBlock(5, Pattern(5, 1)))
	assert.Nil(t, dev.ReadBlock(3, buf))
	assert.Equal(t, buf, Pattern(3, 1))

	// overwrite
	assert.Nil(t, dev.WriteBlock(3, Pattern(3, 2)))
	assert.Nil(t, dev.ReadBlock(3, buf))
	assert.Equal(t, buf, Pattern(3, 2))
	assert.Nil(t, dev.ReadBlock(5, buf))
	assert.Equal(t, buf, Pattern(5, 1))

	// block 4 (between written ones) is still zero
	assert.Nil(t, dev.ReadBlock(4, buf))
	assert.Equal(t, buf, make([]byte, blockdev.BlockSize))

	assert.Equal(t, dev.ReadBlock(3, buf[:10]), blockdev.ErrShortBuffer)
	assert.Equal(t, dev.WriteBlock(3, make([]byte, blockdev.BlockSize+1)), blockdev.ErrShortBuffer)
}

func ProdBounded(t *testing.T, open OpenCallback, config blockdev.Configuration) {
	config.Blocks = 8
	dev := open(config)
	defer dev.Close()
	buf := make([]byte, blockdev.BlockSize)
	assert.Nil(t, dev.WriteBlock(7, Pattern(7, 0)))
	assert.Equal(t, errors.Cause(dev.WriteBlock(8, buf)), blockdev.ErrOutOfRange)
	assert.Equal(t, errors.Cause(dev.ReadBlock(8, buf)), blockdev.ErrOutOfRange)
}

func ProdPersistence(t *testing.T, open OpenCallback, config blockdev.Configuration) {
	dev := open(config)
	for i := uint64(0); i < 10; i++ {
		assert.Nil(t, dev.WriteBlock(i*3, Pattern(i*3, 7)))
	}
	assert.Nil(t, dev.Close())

	dev = open(config)
	defer dev.Close()
	buf := make([]byte, blockdev.BlockSize)
	for i := uint64(0); i < 30; i++ {
		assert.Nil(t, dev.ReadBlock(i, buf))
		if i%3 == 0 {
			assert.Equal(t, buf, Pattern(i, 7))
		} else {
			assert.Equal(t, buf, make([]byte, blockdev.BlockSize))
		}
	}
}

func ProdConcurrent(t *testing.T, open OpenCallback, config blockdev.Configuration) {
	dev := open(config)
	defer dev.Close()
	var wg util.SimpleWaitGroup
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		i := i
		wg.Go(func() {
			id := uint64(i)
			buf := make([]byte, blockdev.BlockSize)
			for round := byte(0); round < 10; round++ {
				if err := dev.WriteBlock(id, Pattern(id, round)); err != nil {
					errs[i] = err
					return
				}
				if err := dev.ReadBlock(id, buf); err != nil {
					errs[i] = err
					return
				}
				if !bytes.Equal(buf, Pattern(id, round)) {
					errs[i] = fmt.Errorf("block %d round %d mismatch", id, round)
					return
				}
			}
		})
	}
	wg.Wait()
	for _, err := range errs {
		assert.Nil(t, err)
	}
}

// ProdDevice runs all of the above; dir is a fresh directory.
func ProdDevice(t *testing.T, open OpenCallback, config blockdev.Configuration, persistent bool) {
	t.Run("basic", func(t *testing.T) {
		c := config
		c.Directory = t.TempDir()
		ProdBasic(t, open, c)
	})
	t.Run("bounded", func(t *testing.T) {
		c := config
		c.Directory = t.TempDir()
		ProdBounded(t, open, c)
	})
	t.Run("concurrent", func(t *testing.T) {
		c := config
		c.Directory = t.TempDir()
		ProdConcurrent(t, open, c)
	})
	if persistent {
		t.Run("persistence", func(t *testing.T) {
			c := config
			c.Directory = t.TempDir()
			ProdPersistence(t, open, c)
		})
	}
}
