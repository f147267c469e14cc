/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Mon Feb 11 17:04:10 2019 mstenber
 * Last modified: Mon Feb 11 17:12:36 2019 mstenber
 * Edit time:     8 min
 *
 */

package util

import (
	"testing"

	"github.com/stvp/assert"
)

func TestParallelLimiter(t *testing.T) {
	t.Parallel()
	pl := ParallelLimiter{LimitTotal: 3}
	var wg SimpleWaitGroup
	var running, peak AtomicInt
	var lock MutexLocked
	for i := 0; i < 20; i++ {
		pl.Go(&wg, func() {
			running.Inc()
			func() {
				defer lock.Locked()()
				if running.Get() > peak.Get() {
					peak.Set(running.Get())
				}
			}()
			running.Add(-1)
		})
	}
	wg.Wait()
	assert.True(t, peak.Get() >= 1)
	assert.True(t, peak.Get() <= 3)
	assert.Equal(t, running.Get(), int64(0))
}
