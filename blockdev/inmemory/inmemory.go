/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 17 22:20:08 2017 mstenber
 * Last modified: Thu Feb 14 11:40:19 2019 mstenber
 * Edit time:     81 min
 *
 */

package inmemory

import (
	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/mlog"
	"github.com/fingon/go-blkcache/util"
)

// inMemoryDevice is a ramdisk; blocks are just stored in a map.
type inMemoryDevice struct {
	blockdev.KVDeviceBase
	lock     util.MutexLocked
	id2Value map[uint64][]byte
	reads    util.AtomicInt
	writes   util.AtomicInt
}

var _ blockdev.Device = &inMemoryDevice{}

// Device is the view of the ramdisk tests use to peek at it.
type Device interface {
	blockdev.Device

	// Counts returns the number of ReadBlock and WriteBlock calls.
	Counts() (reads, writes int)
}

func NewInMemoryDevice(config blockdev.Configuration) Device {
	self := &inMemoryDevice{id2Value: make(map[uint64][]byte)}
	self.Configuration = config
	return self
}

func (self *inMemoryDevice) Close() error {
	return nil
}

func (self *inMemoryDevice) Counts() (reads, writes int) {
	return self.reads.GetInt(), self.writes.GetInt()
}

func (self *inMemoryDevice) ReadBlock(id uint64, buf []byte) error {
	if err := self.CheckAccess(id, buf); err != nil {
		return err
	}
	self.reads.Inc()
	var value []byte
	func() {
		defer self.lock.Locked()()
		value = self.id2Value[id]
	}()
	return self.DecodeBlock(id, value, buf)
}

func (self *inMemoryDevice) WriteBlock(id uint64, buf []byte) error {
	if err := self.CheckAccess(id, buf); err != nil {
		return err
	}
	value, err := self.EncodeBlock(id, buf)
	if err != nil {
		return err
	}
	mlog.Printf2("blockdev/inmemory/inmemory", "im.WriteBlock %d", id)
	self.writes.Inc()
	defer self.lock.Locked()()
	self.id2Value[id] = value
	return nil
}
