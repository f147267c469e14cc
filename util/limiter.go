/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jan 11 07:40:22 2018 mstenber
 * Last modified: Mon Feb 11 17:02:48 2019 mstenber
 * Edit time:     29 min
 *
 */

package util

import (
	"runtime"
	"sync"
)

const DefaultPerCPU = 1

// ParallelLimiter ensures that at most N things run at the same
// time. It is essentially a semaphore with trivial API: either
// defer Limited()(), or Go(func).
type ParallelLimiter struct {
	// How many things are allowed per CPU (defaults to DefaultPerCPU)
	LimitPerCPU int

	// How many things are allowed in total (by default derived
	// from LimitPerCPU)
	LimitTotal int

	lock        sync.Mutex
	cond        sync.Cond
	running     int
	initialized bool
}

func (self *ParallelLimiter) init() {
	if self.LimitTotal <= 0 {
		if self.LimitPerCPU <= 0 {
			self.LimitPerCPU = DefaultPerCPU
		}
		self.LimitTotal = runtime.NumCPU() * self.LimitPerCPU
	}
	self.cond.L = &self.lock
	self.initialized = true
}

// Limited2 reserves 'count' execution slots, waiting until they are
// available.
func (self *ParallelLimiter) Limited2(count int) func() {
	self.lock.Lock()
	defer self.lock.Unlock()
	if !self.initialized {
		self.init()
	}
	for self.running+count > self.LimitTotal {
		self.cond.Wait()
	}
	self.running += count
	return func() {
		self.lock.Lock()
		defer self.lock.Unlock()
		self.running -= count
		self.cond.Broadcast()
	}
}

func (self *ParallelLimiter) Limited() func() {
	return self.Limited2(1)
}

// Go runs cb in a goroutine once a slot is free. The slot is
// reserved before Go returns.
func (self *ParallelLimiter) Go(wg *SimpleWaitGroup, cb func()) {
	unlock := self.Limited()
	wg.Go(func() {
		defer unlock()
		cb()
	})
}
