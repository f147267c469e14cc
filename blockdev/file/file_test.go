/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Thu Feb 14 14:44:31 2019 mstenber
 * Last modified: Fri Feb 15 09:52:40 2019 mstenber
 * Edit time:     11 min
 *
 */

package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stvp/assert"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/blockdev/blockdevtest"
	"github.com/fingon/go-blkcache/codec"
)

func open(config blockdev.Configuration) blockdev.Device {
	dev, err := NewFileDevice(config)
	if err != nil {
		panic(err)
	}
	return dev
}

func TestFile(t *testing.T) {
	t.Parallel()
	blockdevtest.ProdDevice(t, open, blockdev.Configuration{}, true)
}

func TestFileLayout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dev := open(blockdev.Configuration{Directory: dir})
	assert.Nil(t, dev.WriteBlock(2, blockdevtest.Pattern(2, 9)))
	assert.Nil(t, dev.Close())

	data, err := os.ReadFile(filepath.Join(dir, ImageName))
	assert.Nil(t, err)
	assert.Equal(t, len(data), 3*blockdev.BlockSize)
	assert.Equal(t, data[2*blockdev.BlockSize:], blockdevtest.Pattern(2, 9))
	assert.Equal(t, data[:2*blockdev.BlockSize], make([]byte, 2*blockdev.BlockSize))
}

func TestFileCodec(t *testing.T) {
	t.Parallel()
	_, err := NewFileDevice(blockdev.Configuration{Directory: t.TempDir(),
		Codec: &codec.CompressingCodec{}})
	assert.Equal(t, err, blockdev.ErrCodecNotSupported)
}
