/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Fri Dec 29 09:05:40 2017 mstenber
 * Last modified: Mon Feb 11 16:33:03 2019 mstenber
 * Edit time:     3 min
 *
 */

package util

import (
	"bytes"
	"testing"

	"github.com/stvp/assert"
)

func TestConcatBytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ConcatBytes([]byte("foo"), []byte("bar")), []byte("foobar"))
}

func TestUint64Bytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Uint64Bytes(0x0102), []byte{0, 0, 0, 0, 0, 0, 1, 2})
	assert.Equal(t, BytesUint64(Uint64Bytes(1234567)), uint64(1234567))
	// key order follows numeric order
	assert.True(t, bytes.Compare(Uint64Bytes(255), Uint64Bytes(256)) < 0)
}
