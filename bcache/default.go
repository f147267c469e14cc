/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Mon Feb 18 15:20:31 2019 mstenber
 * Last modified: Mon Feb 18 15:31:06 2019 mstenber
 * Edit time:     9 min
 *
 */

package bcache

import (
	"sync"

	"github.com/fingon/go-blkcache/blockdev"
)

// The process-wide manager, for callers that do not pass one around.
// It is created with DefaultCapacity on first use and lives until the
// process exits; SyncAll should be called before that.
var defaultManager *Manager
var defaultOnce sync.Once

func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager(DefaultCapacity)
	})
	return defaultManager
}

// Get acquires blockId of device from the default manager.
func Get(blockId uint64, device blockdev.BlockDevice) (*Handle, error) {
	return Default().Acquire(blockId, device)
}

// SyncAll flushes the default manager.
func SyncAll() error {
	return Default().FlushAll()
}
