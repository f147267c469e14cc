/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jan  4 12:51:02 2018 mstenber
 * Last modified: Mon Feb 11 16:05:10 2019 mstenber
 * Edit time:     4 min
 *
 */

package gid

import (
	"sync"
	"testing"

	"github.com/stvp/assert"
)

func TestGetGoroutineID(t *testing.T) {
	t.Parallel()
	mine := GetGoroutineID()
	assert.True(t, mine > 0)
	assert.Equal(t, GetGoroutineID(), mine)

	var other uint64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		other = GetGoroutineID()
	}()
	wg.Wait()
	assert.True(t, other > 0)
	assert.NotEqual(t, other, mine)
}

func BenchmarkGetGoroutineID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GetGoroutineID()
	}
}
