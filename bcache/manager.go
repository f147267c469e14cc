/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Fri Feb 15 13:05:44 2019 mstenber
 * Last modified: Tue Feb 19 10:12:58 2019 mstenber
 * Edit time:     142 min
 *
 */

package bcache

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/mlog"
	"github.com/fingon/go-blkcache/util"
)

// DefaultCapacity is the number of entries a manager holds unless
// told otherwise.
const DefaultCapacity = 16

// ErrCacheExhausted is the panic value of Acquire when every entry is
// referenced. It indicates a misconfigured capacity, not a workload
// problem, so it is not returned as an error.
var ErrCacheExhausted = errors.New("bcache: run out of block cache entries")

// Manager is a bounded pool of Entries, keyed by (device, block id).
//
// Entries are kept in insertion order; when a new one is needed and
// the pool is full, the first entry without handles is flushed and
// evicted. This is deliberately not LRU.
type Manager struct {
	// Capacity bounds the number of resident entries.
	Capacity int

	// FlushParallelism > 1 lets FlushAll write that many blocks
	// at the same time.
	FlushParallelism int

	lock    util.MutexLocked
	entries []*Entry

	hits, misses, loads, evictions, writes util.AtomicInt
}

type Stats struct {
	Hits, Misses, Loads, Evictions, Writes int64
	Resident                               int
}

func (self Stats) String() string {
	return fmt.Sprintf("{resident:%d hits:%d misses:%d loads:%d evictions:%d writes:%d}",
		self.Resident, self.Hits, self.Misses, self.Loads, self.Evictions, self.Writes)
}

func NewManager(capacity int) *Manager {
	return &Manager{Capacity: capacity}
}

func (self *Manager) capacity() int {
	if self.Capacity <= 0 {
		return DefaultCapacity
	}
	return self.Capacity
}

func (self *Manager) newHandle(e *Entry) *Handle {
	e.refs.Inc()
	return &Handle{entry: e, manager: self}
}

// Acquire returns a handle to the entry of block blockId on device,
// loading it if it is not resident. The handle must be Released.
//
// Device errors while loading the block or flushing the evicted one
// are returned; if all entries are in use, Acquire panics with
// ErrCacheExhausted.
func (self *Manager) Acquire(blockId uint64, device blockdev.BlockDevice) (*Handle, error) {
	defer self.lock.Locked()()
	for _, e := range self.entries {
		if e.blockId == blockId && e.device == device {
			self.hits.Inc()
			return self.newHandle(e), nil
		}
	}
	self.misses.Inc()
	mlog.Printf2("bcache/manager", "m.Acquire %d - miss", blockId)
	if len(self.entries) >= self.capacity() {
		if err := self.evictLocked(); err != nil {
			return nil, err
		}
	}
	e, err := loadEntry(blockId, device)
	if err != nil {
		return nil, err
	}
	self.loads.Inc()
	self.entries = append(self.entries, e)
	return self.newHandle(e), nil
}

func (self *Manager) evictLocked() error {
	for i, e := range self.entries {
		if e.refs.Get() != 0 {
			continue
		}
		mlog.Printf2("bcache/manager", " evicting %d", e.blockId)
		if err := self.flushEntry(e); err != nil {
			return errors.Wrap(err, "evicting")
		}
		copy(self.entries[i:], self.entries[i+1:])
		self.entries[len(self.entries)-1] = nil
		self.entries = self.entries[:len(self.entries)-1]
		self.evictions.Inc()
		return nil
	}
	mlog.Printf2("bcache/manager", " all %d entries in use", len(self.entries))
	panic(ErrCacheExhausted)
}

func (self *Manager) flushEntry(e *Entry) error {
	wrote, err := e.flush()
	if wrote {
		self.writes.Inc()
	}
	return err
}

// FlushAll writes every dirty resident entry back to its device. All
// entries are attempted; the first error is returned.
func (self *Manager) FlushAll() error {
	defer self.lock.Locked()()
	return self.flushAllLocked()
}

func (self *Manager) flushAllLocked() error {
	mlog.Printf2("bcache/manager", "m.FlushAll %d entries", len(self.entries))
	errs := make([]error, len(self.entries))
	if self.FlushParallelism > 1 {
		limiter := util.ParallelLimiter{LimitTotal: self.FlushParallelism}
		var wg util.SimpleWaitGroup
		for i, e := range self.entries {
			i, e := i, e
			limiter.Go(&wg, func() {
				errs[i] = self.flushEntry(e)
			})
		}
		wg.Wait()
	} else {
		for i, e := range self.entries {
			errs[i] = self.flushEntry(e)
		}
	}
	var first error
	failed := 0
	for _, err := range errs {
		if err != nil {
			if first == nil {
				first = err
			}
			failed++
		}
	}
	if first != nil {
		return errors.Wrapf(first, "%d of %d blocks not flushed", failed, len(errs))
	}
	return nil
}

// Close flushes everything and drops the entries no one holds. It
// fails if some entries are still referenced; those stay resident.
func (self *Manager) Close() error {
	defer self.lock.Locked()()
	if err := self.flushAllLocked(); err != nil {
		return err
	}
	kept := self.entries[:0]
	for _, e := range self.entries {
		if e.refs.Get() != 0 {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(self.entries); i++ {
		self.entries[i] = nil
	}
	self.entries = kept
	mlog.Printf2("bcache/manager", "m.Close, %d entries still referenced", len(kept))
	if len(kept) > 0 {
		return errors.Errorf("%d cache entries still referenced", len(kept))
	}
	return nil
}

// Len returns the number of resident entries.
func (self *Manager) Len() int {
	defer self.lock.Locked()()
	return len(self.entries)
}

func (self *Manager) Stats() Stats {
	return Stats{
		Hits:      self.hits.Get(),
		Misses:    self.misses.Get(),
		Loads:     self.loads.Get(),
		Evictions: self.evictions.Get(),
		Writes:    self.writes.Get(),
		Resident:  self.Len(),
	}
}
