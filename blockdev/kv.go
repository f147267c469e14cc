/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Wed Feb 13 10:40:27 2019 mstenber
 * Last modified: Thu Feb 14 11:31:02 2019 mstenber
 * Edit time:     34 min
 *
 */

package blockdev

import (
	"github.com/pkg/errors"

	"github.com/fingon/go-blkcache/mlog"
	"github.com/fingon/go-blkcache/util"
)

// KVDeviceBase is embedded by devices that store each block as a
// separate value (keyed by its id). It takes care of range checks,
// codec handling and the zero-fill of missing blocks.
type KVDeviceBase struct {
	Configuration
}

// Key returns the big-endian key of the block; it doubles as the
// codec additional data.
func (self *KVDeviceBase) Key(id uint64) []byte {
	return util.Uint64Bytes(id)
}

// EncodeBlock produces the stored value for block id.
func (self *KVDeviceBase) EncodeBlock(id uint64, buf []byte) ([]byte, error) {
	if self.Codec == nil {
		v := make([]byte, BlockSize)
		copy(v, buf)
		return v, nil
	}
	v, err := self.Codec.EncodeBytes(buf, self.Key(id))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding block %d", id)
	}
	return v, nil
}

// DecodeBlock fills buf from the stored value; nil value means the
// block has never been written.
func (self *KVDeviceBase) DecodeBlock(id uint64, value []byte, buf []byte) error {
	if value == nil {
		mlog.Printf2("blockdev/kv", "kv.DecodeBlock %d - zero", id)
		for i := range buf {
			buf[i] = 0
		}
		return nil
	}
	if self.Codec != nil {
		var err error
		value, err = self.Codec.DecodeBytes(value, self.Key(id))
		if err != nil {
			return errors.Wrapf(err, "decoding block %d", id)
		}
	}
	if len(value) != BlockSize {
		return errors.Errorf("block %d has %d bytes stored", id, len(value))
	}
	copy(buf, value)
	return nil
}
