/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Fri Feb 15 10:30:12 2019 mstenber
 * Last modified: Mon Feb 18 14:02:37 2019 mstenber
 * Edit time:     88 min
 *
 */

package bcache

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/mlog"
	"github.com/fingon/go-blkcache/util"
)

// Entry is the in-memory mirror of exactly one block of one device.
//
// The data is authoritative; dirty is set whenever a mutable view
// has been handed out, and cleared when the data hits the device.
type Entry struct {
	lock util.MutexLocked

	// words backs the block data; uint64 keeps it 8-byte aligned
	// for the typed views.
	words   [blockdev.BlockSize / 8]uint64
	blockId uint64
	device  blockdev.BlockDevice
	dirty   bool

	// number of live handles; changed upwards only with the
	// manager lock held
	refs util.AtomicInt
}

func (self *Entry) base() unsafe.Pointer {
	return unsafe.Pointer(&self.words[0])
}

func (self *Entry) bytes() []byte {
	return unsafe.Slice((*byte)(self.base()), blockdev.BlockSize)
}

func loadEntry(blockId uint64, device blockdev.BlockDevice) (*Entry, error) {
	mlog.Printf2("bcache/entry", "loadEntry %d", blockId)
	self := &Entry{blockId: blockId, device: device}
	if err := device.ReadBlock(blockId, self.bytes()); err != nil {
		return nil, errors.Wrapf(err, "loading block %d", blockId)
	}
	return self, nil
}

// flushLocked writes the data back if dirty; entry lock must be held.
// On failure the entry stays dirty.
func (self *Entry) flushLocked() (wrote bool, err error) {
	if !self.dirty {
		return
	}
	mlog.Printf2("bcache/entry", "e.flush %d", self.blockId)
	if err = self.device.WriteBlock(self.blockId, self.bytes()); err != nil {
		err = errors.Wrapf(err, "flushing block %d", self.blockId)
		return
	}
	self.dirty = false
	wrote = true
	return
}

func (self *Entry) flush() (bool, error) {
	defer self.lock.Locked()()
	return self.flushLocked()
}

// Handle is the caller's share of an Entry, obtained from
// Manager.Acquire. It must be released exactly once; any use after
// Release panics.
type Handle struct {
	entry    *Entry
	manager  *Manager
	released int32
}

func (self *Handle) live() *Entry {
	if atomic.LoadInt32(&self.released) != 0 {
		mlog.Panicf("bcache/entry", "use of released handle (block %d)", self.entry.blockId)
	}
	return self.entry
}

func (self *Handle) BlockId() uint64 {
	return self.live().blockId
}

func (self *Handle) Device() blockdev.BlockDevice {
	return self.live().device
}

func (self *Handle) Dirty() bool {
	e := self.live()
	defer e.lock.Locked()()
	return e.dirty
}

// Flush writes the block back to the device if it is dirty.
func (self *Handle) Flush() error {
	wrote, err := self.live().flush()
	if wrote {
		self.manager.writes.Inc()
	}
	return err
}

// Lock gives exclusive access to the block data until Unlock is
// called on the result. The manager must not be entered while it is
// held.
func (self *Handle) Lock() *Locked {
	e := self.live()
	e.lock.Lock()
	return &Locked{entry: e}
}

// Release gives the entry back to the manager; once no handles
// remain it may be evicted.
func (self *Handle) Release() {
	if !atomic.CompareAndSwapInt32(&self.released, 0, 1) {
		mlog.Panicf("bcache/entry", "double release (block %d)", self.entry.blockId)
	}
	if self.entry.refs.Dec() < 0 {
		mlog.Panicf("bcache/entry", "negative refcount (block %d)", self.entry.blockId)
	}
}

// Locked is an entry with its lock held. Views obtained through it
// are valid only until Unlock.
type Locked struct {
	entry *Entry
}

func (self *Locked) live() *Entry {
	if self.entry == nil {
		mlog.Panicf("bcache/entry", "use of unlocked entry")
	}
	return self.entry
}

func (self *Locked) Unlock() {
	e := self.live()
	self.entry = nil
	e.lock.Unlock()
}
