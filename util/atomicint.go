/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Mar 21 11:19:49 2018 mstenber
 * Last modified: Mon Feb 11 16:40:12 2019 mstenber
 * Edit time:     8 min
 *
 */

package util

import "sync/atomic"

// AtomicInt is a counter that is safe to bump without holding any
// lock; cache statistics are kept in these.
type AtomicInt int64

func (self *AtomicInt) Get() int64 {
	return atomic.LoadInt64((*int64)(self))
}

func (self *AtomicInt) GetInt() int {
	return int(self.Get())
}

func (self *AtomicInt) Add(value int64) {
	atomic.AddInt64((*int64)(self), value)
}

func (self *AtomicInt) AddInt(value int) {
	self.Add(int64(value))
}

func (self *AtomicInt) Inc() {
	self.Add(1)
}

// Dec decrements and returns the new value.
func (self *AtomicInt) Dec() int64 {
	return atomic.AddInt64((*int64)(self), -1)
}

func (self *AtomicInt) Set(value int64) {
	atomic.StoreInt64((*int64)(self), value)
}
