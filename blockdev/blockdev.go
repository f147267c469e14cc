/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Wed Feb 13 10:02:11 2019 mstenber
 * Last modified: Thu Feb 14 11:20:37 2019 mstenber
 * Edit time:     58 min
 *
 */

// blockdev contains the storage media underneath the block cache.
//
// A medium is addressed by numeric block id, and transfers exactly
// BlockSize bytes at a time. Blocks that have never been written read
// back as zeros, so a fresh device is a zeroed device.
package blockdev

import (
	"errors"
	"fmt"

	"github.com/fingon/go-blkcache/codec"
)

// BlockSize is the size of every block in bytes.
const BlockSize = 512

var ErrOutOfRange = errors.New("blockdev: block id out of range")
var ErrShortBuffer = errors.New("blockdev: buffer is not BlockSize bytes")
var ErrCodecNotSupported = errors.New("blockdev: device does not support codecs")

// BlockDevice is the capability the block cache consumes. Both calls
// are synchronous and either succeed completely or return an error;
// implementations must be safe for concurrent use on distinct ids,
// and must be comparable (pointer types) as the cache keys on them.
type BlockDevice interface {
	// ReadBlock fills buf (BlockSize bytes) with block id.
	ReadBlock(id uint64, buf []byte) error

	// WriteBlock stores buf (BlockSize bytes) as block id.
	WriteBlock(id uint64, buf []byte) error
}

// Device is an openable BlockDevice that owns resources.
type Device interface {
	BlockDevice

	Close() error
}

// Configuration is shared by all device implementations; fields a
// device does not need are ignored.
type Configuration struct {
	// Directory (or file path prefix) the device stores data in.
	Directory string

	// Blocks bounds the device size; 0 means unbounded.
	Blocks uint64

	// Codec used to encode individual blocks (key-value devices only).
	Codec codec.Codec
}

func (self Configuration) String() string {
	return fmt.Sprintf("{dir:%q blocks:%d codec:%v}", self.Directory, self.Blocks, self.Codec != nil)
}

// CheckAccess validates the arguments common to ReadBlock and
// WriteBlock.
func (self *Configuration) CheckAccess(id uint64, buf []byte) error {
	if len(buf) != BlockSize {
		return ErrShortBuffer
	}
	if self.Blocks > 0 && id >= self.Blocks {
		return ErrOutOfRange
	}
	return nil
}
