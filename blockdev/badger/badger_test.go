/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Thu Feb 14 14:53:47 2019 mstenber
 * Last modified: Fri Feb 15 09:57:01 2019 mstenber
 * Edit time:     5 min
 *
 */

package badger

import (
	"testing"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/blockdev/blockdevtest"
	"github.com/fingon/go-blkcache/codec"
)

func open(config blockdev.Configuration) blockdev.Device {
	dev, err := NewBadgerDevice(config)
	if err != nil {
		panic(err)
	}
	return dev
}

func TestBadger(t *testing.T) {
	blockdevtest.ProdDevice(t, open, blockdev.Configuration{}, true)
}

func TestBadgerCompressed(t *testing.T) {
	blockdevtest.ProdDevice(t, open,
		blockdev.Configuration{Codec: &codec.CompressingCodec{}}, true)
}
